package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetProfile(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	user, err := c.service.Get(ctx.Request.Context(), sess)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load profile")
		return
	}
	if user == nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Profile not found", nil, nil)
		return
	}
	response.RespondOK(ctx, "Profile retrieved successfully", user)
}

func (c *Controller) UpdateProfile(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.ProfileForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	user, message, err := c.service.Update(ctx.Request.Context(), sess, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update profile")
		return
	}
	response.RespondOK(ctx, message, user)
}

// UploadImage godoc
// @Summary      Replace the current user's profile image
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        profileImage formData file true "Image up to 5MB"
// @Success      200 {object} response.StandardApiResponse
// @Failure      400 {object} response.StandardApiResponse
// @Router       /user/upload-profile-image [post]
func (c *Controller) UploadImage(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	image, err := ctx.FormFile("profileImage")
	if err != nil {
		image = nil
	}

	user, message, err := c.service.UploadImage(ctx.Request.Context(), sess, image)
	if err != nil {
		response.RespondError(ctx, err, "Failed to upload image")
		return
	}
	response.RespondOK(ctx, message, user)
}
