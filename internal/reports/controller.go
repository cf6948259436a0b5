package reports

import (
	"net/http"

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

func (c *Controller) ListReports(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	state := listview.FromQuery(ctx.Request.URL.Query())

	page, err := c.service.List(ctx.Request.Context(), sess, state)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load reports")
		return
	}
	response.RespondOK(ctx, "Reports retrieved successfully", upstream.ListData(page, state))
}

func (c *Controller) GetReport(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	report, err := c.service.Get(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to load report")
		return
	}
	if report == nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Report not found", nil, nil)
		return
	}
	response.RespondOK(ctx, "Report retrieved successfully", report)
}
