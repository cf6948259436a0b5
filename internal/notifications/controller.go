package notifications

import (
	"github.com/gin-gonic/gin"

	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/upstream"
	"jobpilot-admin/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListNotifications godoc
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page  query int    false "Page"
// @Param        limit query int    false "Page size"
// @Param        type  query string false "applied, shortlisted, interview, offer or system"
// @Param        read  query bool   false "Read state"
// @Success      200 {object} response.StandardApiResponse{data=response.ListData}
// @Router       /notifications [get]
func (c *Controller) ListNotifications(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	state := listview.FromQuery(ctx.Request.URL.Query(), FilterKeys...)

	page, err := c.service.List(ctx.Request.Context(), sess, state)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load notifications")
		return
	}
	response.RespondOK(ctx, "Notifications retrieved successfully", upstream.ListData(page, state))
}

func (c *Controller) GetUnreadCount(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	count, err := c.service.UnreadCount(ctx.Request.Context(), sess, ctx.Query("type"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to load unread count")
		return
	}
	response.RespondOK(ctx, "Unread count retrieved successfully", UnreadCount{Count: count})
}

func (c *Controller) MarkRead(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	n, message, err := c.service.MarkRead(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to mark notification as read")
		return
	}
	response.RespondOK(ctx, message, n)
}

// MarkAllRead accepts an optional {"type": ...} body
func (c *Controller) MarkAllRead(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req markAllRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondBadRequest(ctx, err)
			return
		}
	}

	result, message, err := c.service.MarkAllRead(ctx.Request.Context(), sess, req.Type)
	if err != nil {
		response.RespondError(ctx, err, "Failed to mark notifications as read")
		return
	}
	response.RespondOK(ctx, message, result)
}
