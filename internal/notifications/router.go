package notifications

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
	notifications := rg.Group("/notifications")
	notifications.Use(r.requireAuth)
	{
		notifications.GET("", r.controller.ListNotifications)
		notifications.GET("/unread-count", r.controller.GetUnreadCount)
		notifications.PATCH("/mark-all-read", r.controller.MarkAllRead)
		notifications.PATCH("/:id/read", r.controller.MarkRead)
	}
}
