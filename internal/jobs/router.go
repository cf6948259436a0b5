package jobs

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
	jobs := rg.Group("/job")
	jobs.Use(r.requireAuth)
	{
		jobs.GET("/get-all", r.controller.ListJobs)
		jobs.GET("/get-single/:id", r.controller.GetJob)
		jobs.GET("/dashboard-data", r.controller.GetStats)
		jobs.POST("/create", r.controller.CreateJob)
		jobs.PATCH("/update/:id", r.controller.UpdateJob)
		jobs.PATCH("/update-status/:id", r.controller.UpdateStatus)
		jobs.DELETE("/delete/:id", r.controller.DeleteJob)
	}

	rg.GET("/dashboard", r.requireAuth, r.controller.GetDashboard)
}
