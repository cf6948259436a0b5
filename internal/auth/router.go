package auth

import (
	"github.com/gin-gonic/gin"
)

// Router handles auth-related routes
type Router struct {
	controller   *Controller
	requireAuth  gin.HandlerFunc
	optionalAuth gin.HandlerFunc
}

// NewRouter creates a new auth router. requireAuth guards the session
// routes; optionalAuth only attaches a session when one is presented.
func NewRouter(controller *Controller, requireAuth, optionalAuth gin.HandlerFunc) *Router {
	return &Router{
		controller:   controller,
		requireAuth:  requireAuth,
		optionalAuth: optionalAuth,
	}
}

// SetupRoutes registers all auth routes
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		// Public routes (no authentication required)
		auth.POST("/login", authRouter.controller.Login)
		auth.POST("/register", authRouter.controller.Register)
		auth.POST("/resend-otp", authRouter.controller.ResendOTP)
		auth.POST("/verify-otp", authRouter.controller.VerifyOTP)
		auth.POST("/verify-email", authRouter.controller.VerifyEmail)
		auth.POST("/reset-password", authRouter.controller.ResetPassword)

		optional := auth.Group("")
		optional.Use(authRouter.optionalAuth)
		{
			optional.POST("/logout", authRouter.controller.Logout)
			optional.GET("/permissions", authRouter.controller.GetPermissions)
		}

		// Protected routes (authentication required)
		protected := auth.Group("")
		protected.Use(authRouter.requireAuth)
		{
			protected.PATCH("/change-password", authRouter.controller.ChangePassword)
			protected.POST("/refresh-token", authRouter.controller.RefreshToken)
			protected.GET("/me", authRouter.controller.GetMe)
		}
	}
}
