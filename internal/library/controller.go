package library

import (
	"mime/multipart"

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

func (c *Controller) ListItems(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	state := listview.FromQuery(ctx.Request.URL.Query())

	page, err := c.service.List(ctx.Request.Context(), sess, state)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load library")
		return
	}
	response.RespondOK(ctx, "Library retrieved successfully", upstream.ListData(page, state))
}

// CreateItem godoc
// @Summary      Add a library item
// @Description  Multipart form. fileUrl must match fileType (pdf, video or text); thumbnailUrl must be an image.
// @Tags         library
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title        formData string true  "Title"
// @Param        category     formData string true  "Category"
// @Param        fileType     formData string true  "pdf, video or text"
// @Param        fileUrl      formData file   true  "Content"
// @Param        thumbnailUrl formData file   false "Thumbnail"
// @Success      201 {object} response.StandardApiResponse{data=Item}
// @Failure      400 {object} response.StandardApiResponse
// @Router       /library/create [post]
func (c *Controller) CreateItem(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.LibraryForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	item, message, err := c.service.Create(ctx.Request.Context(), sess, &req, uploadsOf(ctx))
	if err != nil {
		response.RespondError(ctx, err, "Failed to create library item")
		return
	}
	response.RespondCreated(ctx, message, item)
}

func (c *Controller) UpdateItem(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.LibraryForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	item, message, err := c.service.Update(ctx.Request.Context(), sess, ctx.Param("id"), &req, uploadsOf(ctx))
	if err != nil {
		response.RespondError(ctx, err, "Failed to update library item")
		return
	}
	response.RespondOK(ctx, message, item)
}

func (c *Controller) DeleteItem(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	message, err := c.service.Delete(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to delete library item")
		return
	}
	response.RespondOK(ctx, message, nil)
}

func uploadsOf(ctx *gin.Context) Uploads {
	return Uploads{
		File:      formFile(ctx, "fileUrl"),
		Thumbnail: formFile(ctx, "thumbnailUrl"),
	}
}

func formFile(ctx *gin.Context, field string) *multipart.FileHeader {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
