package screens

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
	screens := rg.Group("/screens")
	screens.Use(r.requireAuth)
	{
		screens.POST("", r.controller.OpenScreen)
		screens.GET("/:id", r.controller.GetScreen)
		screens.GET("/:id/events", r.controller.Events)
		screens.PATCH("/:id", r.controller.UpdateScreen)
		screens.POST("/:id/retry", r.controller.RetryScreen)
		screens.DELETE("/:id", r.controller.CloseScreen)
	}
}
