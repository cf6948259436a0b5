// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"jobpilot-admin/internal/auth"
	"jobpilot-admin/internal/content"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/jobs"
	"jobpilot-admin/internal/library"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/notifications"
	"jobpilot-admin/internal/payments"
	"jobpilot-admin/internal/profile"
	"jobpilot-admin/internal/reports"
	"jobpilot-admin/internal/screens"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/config"
	"jobpilot-admin/internal/shared/database"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/upstream"
	"jobpilot-admin/internal/users"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "jobpilot-admin/docs"
)

const serviceName = "jobpilot-admin"

// Dependencies are the long-lived components every feature router shares
type Dependencies struct {
	Config   *config.Config
	DB       *database.DB
	Gateway  *upstream.Gateway
	Sessions *session.Manager
	Tokens   *middleware.TokenIssuer
	Registry *listview.Registry
}

// Router holds all route dependencies
type Router struct {
	deps         Dependencies
	uploads      forms.UploadRules
	requireAuth  gin.HandlerFunc
	optionalAuth gin.HandlerFunc
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	return &Router{
		deps:         deps,
		uploads:      forms.NewUploadRules(deps.Config.Upload),
		requireAuth:  middleware.SessionAuth(deps.Tokens, deps.Sessions),
		optionalAuth: middleware.OptionalSession(deps.Tokens, deps.Sessions),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	if r.deps.Config.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(r.deps.Gateway.Cache().Metrics().Handler()))
	}
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.deps.Config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupUserRoutes(api)

		lib := r.setupLibraryRoutes(api)
		r.setupJobRoutes(api, lib)

		r.setupPaymentRoutes(api)
		r.setupContentRoutes(api)
		r.setupNotificationRoutes(api)
		r.setupReportRoutes(api)

		r.setupScreenRoutes(api, r.catalog(lib))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.deps.DB.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.deps.Config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		stats := r.deps.Gateway.Cache().Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.deps.Config.APIVersion,
			"upstream":    r.deps.Config.GetUpstreamBaseURL(),
			"sessions":    r.deps.Sessions.Len(),
			"screens":     r.deps.Registry.Len(),
			"queries":     stats,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.deps.Gateway)
	authService := auth.NewService(authRepo, r.deps.Sessions, r.deps.Tokens)
	auth.NewRouter(auth.NewController(authService), r.requireAuth, r.optionalAuth).SetupRoutes(rg)
}

func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	userService := users.NewService(r.deps.Gateway, r.uploads)
	users.NewRouter(users.NewController(userService), r.requireAuth).SetupRoutes(rg)

	profileService := profile.NewService(r.deps.Gateway, r.uploads)
	profile.NewRouter(profile.NewController(profileService), r.requireAuth).SetupRoutes(rg)
}

func (r *Router) setupLibraryRoutes(rg *gin.RouterGroup) library.Service {
	libraryService := library.NewService(r.deps.Gateway, r.uploads)
	library.NewRouter(library.NewController(libraryService), r.requireAuth).SetupRoutes(rg)
	return libraryService
}

// setupJobRoutes also serves the home dashboard, which reads the library
func (r *Router) setupJobRoutes(rg *gin.RouterGroup, lib library.Service) {
	jobService := jobs.NewService(r.deps.Gateway, lib)
	jobs.NewRouter(jobs.NewController(jobService), r.requireAuth).SetupRoutes(rg)
}

func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentService := payments.NewService(r.deps.Gateway)
	payments.NewRouter(payments.NewController(paymentService), r.requireAuth).SetupRoutes(rg)
}

func (r *Router) setupContentRoutes(rg *gin.RouterGroup) {
	contentService := content.NewService(r.deps.Gateway)
	content.NewRouter(content.NewController(contentService), r.requireAuth).SetupRoutes(rg)
}

func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	notificationService := notifications.NewService(r.deps.Gateway)
	notifications.NewRouter(notifications.NewController(notificationService), r.requireAuth).SetupRoutes(rg)
}

func (r *Router) setupReportRoutes(rg *gin.RouterGroup) {
	reportService := reports.NewService(r.deps.Gateway)
	reports.NewRouter(reports.NewController(reportService), r.requireAuth).SetupRoutes(rg)
}

// catalog lists every collection that can be opened as a live screen
func (r *Router) catalog(lib library.Service) screens.Catalog {
	g := r.deps.Gateway
	return screens.Catalog{
		"users":         {FilterKeys: users.FilterKeys, Source: users.NewService(g, r.uploads).ListSource},
		"jobs":          {FilterKeys: jobs.FilterKeys, Source: jobs.NewService(g, lib).ListSource},
		"library":       {Source: lib.ListSource},
		"payments":      {Source: payments.NewService(g).ListSource},
		"faq":           {Source: content.NewService(g).FAQSource},
		"notifications": {FilterKeys: notifications.FilterKeys, Source: notifications.NewService(g).ListSource},
		"reports":       {Source: reports.NewService(g).ListSource},
	}
}

func (r *Router) setupScreenRoutes(rg *gin.RouterGroup, catalog screens.Catalog) {
	screenService := screens.NewService(catalog, r.deps.Registry, r.deps.Gateway.Cache(), r.deps.Config.Screen.SearchDebounce)
	screens.NewRouter(screens.NewController(screenService), r.requireAuth).SetupRoutes(rg)
}
