package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Login godoc
// @Summary      Log in to the dashboard
// @Description  Authenticates against JobPilot and returns a service token bound to a new session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body forms.LoginForm true "Credentials"
// @Success      200 {object} response.StandardApiResponse{data=LoginResponse}
// @Failure      400 {object} response.StandardApiResponse
// @Failure      401 {object} response.StandardApiResponse
// @Failure      502 {object} response.StandardApiResponse
// @Router       /auth/login [post]
func (c *Controller) Login(ctx *gin.Context) {
	var req forms.LoginForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if !forms.IsValidationError(err) {
			logger := middleware.LoggerFrom(ctx)
			logger.LogAuthFailure(ctx.Request.Context(), err.Error(), ctx.ClientIP())
		}
		response.RespondError(ctx, err, "Login failed")
		return
	}

	response.RespondOK(ctx, "Login successful", resp)
}

// Register godoc
// @Summary      Register a JobPilot account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body forms.RegisterForm true "Registration"
// @Success      201 {object} response.StandardApiResponse
// @Failure      400 {object} response.StandardApiResponse
// @Failure      409 {object} response.StandardApiResponse
// @Router       /auth/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	var req forms.RegisterForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	res, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Registration failed")
		return
	}

	response.RespondCreated(ctx, res.Message, res.Data)
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session locally, then tells JobPilot. The upstream call never blocks the logout.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.StandardApiResponse
// @Router       /auth/logout [post]
func (c *Controller) Logout(ctx *gin.Context) {
	if sess, ok := middleware.SessionFrom(ctx); ok {
		c.service.Logout(ctx.Request.Context(), sess)
	}
	response.RespondOK(ctx, "Logged out successfully", nil)
}

// @Summary  Send a new one time code
// @Tags     auth
// @Router   /auth/resend-otp [post]
func (c *Controller) ResendOTP(ctx *gin.Context) {
	var req forms.EmailForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	res, err := c.service.ResendOTP(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Could not send a new code")
		return
	}
	response.RespondOK(ctx, res.Message, nil)
}

// @Summary  Verify a one time code
// @Tags     auth
// @Router   /auth/verify-otp [post]
func (c *Controller) VerifyOTP(ctx *gin.Context) {
	var req forms.OTPForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	res, err := c.service.VerifyOTP(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Verification failed")
		return
	}
	response.RespondOK(ctx, res.Message, res.Data)
}

// @Summary  Verify an email address
// @Tags     auth
// @Router   /auth/verify-email [post]
func (c *Controller) VerifyEmail(ctx *gin.Context) {
	var req forms.OTPForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	res, err := c.service.VerifyEmail(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Verification failed")
		return
	}
	response.RespondOK(ctx, res.Message, res.Data)
}

// @Summary  Reset a forgotten password
// @Tags     auth
// @Router   /auth/reset-password [post]
func (c *Controller) ResetPassword(ctx *gin.Context) {
	var req forms.ResetPasswordForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	res, err := c.service.ResetPassword(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err, "Could not reset password")
		return
	}
	response.RespondOK(ctx, res.Message, nil)
}

// ChangePassword godoc
// @Summary      Change the current user's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body forms.ChangePasswordForm true "Passwords"
// @Success      200 {object} response.StandardApiResponse
// @Failure      400 {object} response.StandardApiResponse
// @Router       /auth/change-password [patch]
func (c *Controller) ChangePassword(ctx *gin.Context) {
	sess := mustSession(ctx)
	if sess == nil {
		return
	}

	var req forms.ChangePasswordForm
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	res, err := c.service.ChangePassword(ctx.Request.Context(), sess, &req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to change password")
		return
	}
	response.RespondOK(ctx, res.Message, nil)
}

// RefreshToken godoc
// @Summary      Refresh the session's JobPilot tokens
// @Description  The service token keeps working; only the upstream tokens held by the session change.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.StandardApiResponse
// @Failure      400 {object} response.StandardApiResponse
// @Failure      401 {object} response.StandardApiResponse
// @Router       /auth/refresh-token [post]
func (c *Controller) RefreshToken(ctx *gin.Context) {
	sess := mustSession(ctx)
	if sess == nil {
		return
	}

	// The body is optional; the session's own refresh token is the default.
	var req forms.RefreshTokenForm
	_ = ctx.ShouldBindJSON(&req)

	err := c.service.RefreshToken(ctx.Request.Context(), sess, &req)
	switch {
	case err == nil:
		response.RespondOK(ctx, "Token refreshed successfully", nil)
	case errors.Is(err, ErrNoRefreshToken):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "No refresh token available", nil, nil)
	case errors.Is(err, ErrMissingTokens):
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "could not parse response", nil, nil)
	default:
		response.RespondError(ctx, err, "Failed to refresh token")
	}
}

// GetMe godoc
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.StandardApiResponse{data=session.Snapshot}
// @Failure      401 {object} response.StandardApiResponse
// @Router       /auth/me [get]
func (c *Controller) GetMe(ctx *gin.Context) {
	sess := mustSession(ctx)
	if sess == nil {
		return
	}
	response.RespondOK(ctx, "User data retrieved successfully", sess.Snapshot())
}

// GetPermissions godoc
// @Summary      Role gate for the current session
// @Description  Presentation only. JobPilot enforces access on every call.
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.StandardApiResponse{data=PermissionsResponse}
// @Router       /auth/permissions [get]
func (c *Controller) GetPermissions(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)
	response.RespondOK(ctx, "Permissions retrieved successfully", c.service.Permissions(sess))
}

func mustSession(ctx *gin.Context) *session.Store {
	sess, ok := middleware.SessionFrom(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return nil
	}
	return sess
}
