package library

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
	library := rg.Group("/library")
	library.Use(r.requireAuth)
	{
		library.GET("/get-all", r.controller.ListItems)
		library.POST("/create", r.controller.CreateItem)
		library.PUT("/update/:id", r.controller.UpdateItem)
		library.DELETE("/delete/:id", r.controller.DeleteItem)
	}
}
