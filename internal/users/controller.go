package users

import (
	"mime/multipart"
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

// ListUsers godoc
// @Summary      List users
// @Description  One page of users with the "Showing x–y of n" summary. Filter by role with ?role=admin|analyst|user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query int    false "Page"
// @Param        limit  query int    false "Page size"
// @Param        search query string false "Name or email"
// @Param        role   query string false "Role"
// @Success      200 {object} response.StandardApiResponse{data=response.ListData}
// @Router       /user [get]
func (c *Controller) ListUsers(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	state := listview.FromQuery(ctx.Request.URL.Query(), FilterKeys...)

	page, err := c.service.List(ctx.Request.Context(), sess, state)
	if err != nil {
		response.RespondError(ctx, err, "Failed to load users")
		return
	}
	response.RespondOK(ctx, "Users retrieved successfully", upstream.ListData(page, state))
}

func (c *Controller) GetUser(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	user, err := c.service.Get(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to load user")
		return
	}
	if user == nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "User not found", nil, nil)
		return
	}
	response.RespondOK(ctx, "User retrieved successfully", user)
}

// CreateUser godoc
// @Summary      Create a user
// @Description  Multipart form. profileImage must be an image up to 2MB, CV a PDF or Word document up to 5MB.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} response.StandardApiResponse{data=User}
// @Failure      400 {object} response.StandardApiResponse
// @Failure      409 {object} response.StandardApiResponse
// @Router       /user/create-user [post]
func (c *Controller) CreateUser(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.CreateUserForm
	if err := ctx.ShouldBind(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	files := Uploads{
		ProfileImage: formFile(ctx, "profileImage"),
		CV:           formFile(ctx, "CV"),
	}
	user, message, err := c.service.Create(ctx.Request.Context(), sess, &req, files)
	if err != nil {
		response.RespondError(ctx, err, "Failed to create user")
		return
	}
	response.RespondCreated(ctx, message, user)
}

func (c *Controller) UpdateUser(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req forms.UpdateUserForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	user, message, err := c.service.Update(ctx.Request.Context(), sess, ctx.Param("id"), &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update user")
		return
	}
	response.RespondOK(ctx, message, user)
}

func (c *Controller) DeleteUser(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	message, err := c.service.Delete(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to delete user")
		return
	}
	response.RespondOK(ctx, message, nil)
}

// ToggleBlock blocks an active user and unblocks a blocked one
func (c *Controller) ToggleBlock(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	user, message, err := c.service.ToggleBlock(ctx.Request.Context(), sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to update user status")
		return
	}
	response.RespondOK(ctx, message, user)
}

// formFile returns the uploaded file for field, or nil when none was sent
func formFile(ctx *gin.Context, field string) *multipart.FileHeader {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}
