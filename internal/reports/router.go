package reports

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
	reports := rg.Group("/report")
	reports.Use(r.requireAuth)
	{
		reports.GET("", r.controller.ListReports)
		reports.GET("/:id", r.controller.GetReport)
	}
}
