package profile

import (
	"github.com/gin-gonic/gin"
)

type Router struct {
	controller  *Controller
	requireAuth gin.HandlerFunc
}

func NewRouter(controller *Controller, requireAuth gin.HandlerFunc) *Router {
	return &Router{controller: controller, requireAuth: requireAuth}
}

func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	profile := rg.Group("/user")
	profile.Use(r.requireAuth)
	{
		profile.GET("/profile", r.controller.GetProfile)
		profile.PATCH("/profile", r.controller.UpdateProfile)
		profile.POST("/upload-profile-image", r.controller.UploadImage)
	}
}
