package payments

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
	payments := rg.Group("/payment")
	payments.Use(r.requireAuth)
	{
		payments.GET("/read-all", r.controller.ListPayments)
		payments.POST("/create", r.controller.CreatePayment)
		payments.PATCH("/update/:id", r.controller.UpdatePayment)
		payments.DELETE("/delete/:id", r.controller.DeletePayment)
	}
}
