package jobs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobpilot-admin/internal/forms"
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

// ListJobs godoc
// @Summary      List applied jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query int    false "Page"
// @Param        limit  query int    false "Page size"
// @Param        search query string false "Company or title"
// @Param        status query string false "Applied, Shortlisted, Interview, Rejected or Offer"
// @Success      200 {object} response.StandardApiResponse{data=response.ListData}
// @Router       /job/get-all [get]
func (c *Controller) ListJobs(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	state := listview.FromQuery(ctx.Request.URL.Query(), FilterKeys...)

	page, err := c.service.List(ctx.Request.Context(), sess, state)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load jobs")
		return
	}
	response.RespondOK(ctx, "Jobs retrieved successfully", upstream.ListData(page, state))
}

func (c *Controller) GetJob(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	job, err := c.service.Get(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to load job")
		return
	}
	if job == nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Job not found", nil, nil)
		return
	}
	response.RespondOK(ctx, "Job retrieved successfully", job)
}

func (c *Controller) CreateJob(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.JobForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	job, message, err := c.service.Create(ctx.Request.Context(), sess, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create job")
		return
	}
	response.RespondCreated(ctx, message, job)
}

func (c *Controller) UpdateJob(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.JobUpdateForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	job, message, err := c.service.Update(ctx.Request.Context(), sess, ctx.Param("id"), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update job")
		return
	}
	response.RespondOK(ctx, message, job)
}

// UpdateStatus godoc
// @Summary      Move an application to another status
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string              true "Job ID"
// @Param        request body forms.JobStatusForm true "New status"
// @Success      200 {object} response.StandardApiResponse{data=Job}
// @Failure      400 {object} response.StandardApiResponse
// @Router       /job/update-status/{id} [patch]
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.JobStatusForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	job, message, err := c.service.UpdateStatus(ctx.Request.Context(), sess, ctx.Param("id"), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update application status")
		return
	}
	response.RespondOK(ctx, message, job)
}

func (c *Controller) DeleteJob(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	message, err := c.service.Delete(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to delete job")
		return
	}
	response.RespondOK(ctx, message, nil)
}

func (c *Controller) GetStats(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	stats, err := c.service.Stats(ctx.Request.Context(), sess)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load dashboard data")
		return
	}
	response.RespondOK(ctx, "Dashboard data retrieved successfully", stats)
}

// GetDashboard godoc
// @Summary      Home screen
// @Description  Counters, the five latest applications and library highlights in one call
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.StandardApiResponse{data=Dashboard}
// @Failure      502 {object} response.StandardApiResponse
// @Router       /dashboard [get]
func (c *Controller) GetDashboard(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	dashboard, err := c.service.Dashboard(ctx.Request.Context(), sess)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load dashboard")
		return
	}
	response.RespondOK(ctx, "Dashboard retrieved successfully", dashboard)
}
