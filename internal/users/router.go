package users

import (
	"github.com/gin-gonic/gin"
)

// Router handles user management routes
type Router struct {
	controller  *Controller
	requireAuth gin.HandlerFunc
}

func NewRouter(controller *Controller, requireAuth gin.HandlerFunc) *Router {
	return &Router{controller: controller, requireAuth: requireAuth}
}

// SetupRoutes registers the user routes. /user/profile belongs to the
// profile router and is matched before /user/:id.
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/user")
	users.Use(r.requireAuth)
	{
		users.GET("", r.controller.ListUsers)
		users.POST("/create-user", r.controller.CreateUser)
		users.GET("/:id", r.controller.GetUser)
		users.PATCH("/profile-update/:id", r.controller.UpdateUser)
		users.PATCH("/:id/block", r.controller.ToggleBlock)
		users.DELETE("/:id", r.controller.DeleteUser)
	}
}
