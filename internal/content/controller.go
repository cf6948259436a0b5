package content

import (
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

func (c *Controller) ListFAQs(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	state := listview.FromQuery(ctx.Request.URL.Query())

	page, err := c.service.ListFAQs(ctx.Request.Context(), sess, state)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load FAQs")
		return
	}
	response.RespondOK(ctx, "FAQs retrieved successfully", upstream.ListData(page, state))
}

func (c *Controller) CreateFAQ(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.FAQForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	faq, message, err := c.service.CreateFAQ(ctx.Request.Context(), sess, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create FAQ")
		return
	}
	response.RespondCreated(ctx, message, faq)
}

func (c *Controller) UpdateFAQ(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.FAQForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	faq, message, err := c.service.UpdateFAQ(ctx.Request.Context(), sess, ctx.Param("id"), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update FAQ")
		return
	}
	response.RespondOK(ctx, message, faq)
}

func (c *Controller) DeleteFAQ(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	message, err := c.service.DeleteFAQ(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to delete FAQ")
		return
	}
	response.RespondOK(ctx, message, nil)
}

// GetPrivacyPolicy godoc
// @Summary      Read the privacy policy
// @Description  data is null until a policy has been created
// @Tags         content
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.StandardApiResponse{data=Document}
// @Router       /privacy-policy/read [get]
func (c *Controller) GetPrivacyPolicy(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	doc, err := c.service.PrivacyPolicy(ctx.Request.Context(), sess)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load privacy policy")
		return
	}
	response.RespondOK(ctx, "Privacy policy retrieved successfully", doc)
}

func (c *Controller) CreatePrivacyPolicy(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.ContentForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	doc, message, err := c.service.CreatePrivacyPolicy(ctx.Request.Context(), sess, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create privacy policy")
		return
	}
	response.RespondCreated(ctx, message, doc)
}

func (c *Controller) UpdatePrivacyPolicy(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.ContentForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	doc, message, err := c.service.UpdatePrivacyPolicy(ctx.Request.Context(), sess, ctx.Param("id"), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update privacy policy")
		return
	}
	response.RespondOK(ctx, message, doc)
}

func (c *Controller) GetPage(page Page) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sess, _ := middleware.SessionFrom(ctx)

		doc, err := c.service.GetPage(ctx.Request.Context(), sess, page)
		if err != nil {
			response.RespondError(ctx, err, "Failed to load content")
			return
		}
		response.RespondOK(ctx, "Content retrieved successfully", doc)
	}
}

func (c *Controller) SavePage(page Page) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sess, _ := middleware.SessionFrom(ctx)

		var req forms.ContentForm
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondBadRequest(ctx, err)
			return
		}

		doc, message, err := c.service.SavePage(ctx.Request.Context(), sess, page, &req)
		if err != nil {
			response.RespondError(ctx, err, "Failed to save content")
			return
		}
		response.RespondOK(ctx, message, doc)
	}
}
