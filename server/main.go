package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobpilot-admin/api/routes"
	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/auth"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/config"
	"jobpilot-admin/internal/shared/database"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/upstream"
	"jobpilot-admin/pkg/cache"
	"jobpilot-admin/pkg/logger"
	"jobpilot-admin/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

//	@title			JobPilot Admin API
//	@version		1.0
//	@description	Admin dashboard backend in front of the JobPilot REST API.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect backing stores", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	bus, err := newInvalidationBus(cfg, db)
	if err != nil {
		appLogger.Error("failed to create invalidation bus", slog.Any("error", err))
		os.Exit(1)
	}

	queryCache := querycache.New(querycache.Config{
		KeepUnused: cfg.QueryCache.KeepUnused,
		Bus:        bus,
		Logger:     appLogger,
	})
	defer queryCache.Close()
	if err := queryCache.Start(ctx); err != nil {
		appLogger.Error("failed to subscribe to invalidations", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.GetUpstreamBaseURL(),
		Timeout:     cfg.Upstream.Timeout,
		NgrokHeader: cfg.Upstream.NgrokHeader,
		RateLimit:   cfg.Upstream.RateLimit,
		Burst:       cfg.Upstream.Burst,
		Logger:      appLogger,
	})
	if err != nil {
		appLogger.Error("invalid upstream configuration", slog.Any("error", err))
		os.Exit(1)
	}

	storage, err := newSessionStorage(cfg, db)
	if err != nil {
		appLogger.Error("failed to create session storage", slog.Any("error", err))
		os.Exit(1)
	}

	registry := listview.NewRegistry(cfg.Screen.IdleTimeout, appLogger)
	defer registry.CloseAll()
	go registry.Run(ctx, time.Minute)

	sessions := session.NewManager(storage,
		session.WithLogger(appLogger),
		session.WithRemoteLogout(auth.RemoteLogout(client)),
		session.WithLogoutHook(func(ctx context.Context, sessionID string) {
			queryCache.Forget(sessionID)
			registry.DropScope(sessionID)
		}),
	)

	deps := routes.Dependencies{
		Config:   cfg,
		DB:       db,
		Gateway:  upstream.NewGateway(client, queryCache),
		Sessions: sessions,
		Tokens:   middleware.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.JWTExpiresIn),
		Registry: registry,
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			WriteRequests:   cfg.RateLimit.WriteRequests,
			StreamRequests:  cfg.RateLimit.StreamRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        setupRouter(deps, rateLimiter),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("upstream", cfg.GetUpstreamBaseURL()),
			slog.String("session_store", cfg.Session.Store),
			slog.String("invalidation_bus", cfg.QueryCache.Bus),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
			stop()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	appLogger.Info("Shutting down server...")

	// open event streams end when their screens close
	registry.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}
	stop()

	appLogger.Info("Server exited gracefully")
}

// newInvalidationBus picks how mutations reach the caches of other replicas.
// The local bus only serves this process.
func newInvalidationBus(cfg *config.Config, db *database.DB) (querycache.InvalidationBus, error) {
	appLogger := logger.GetDefault()

	switch cfg.QueryCache.Bus {
	case "", "local":
		return querycache.NewLocalBus(appLogger), nil
	case "redis":
		if db.Redis == nil {
			return nil, fmt.Errorf("redis invalidation bus needs a redis connection")
		}
		return querycache.NewRedisBus(cache.NewService(db.Redis),
			querycache.WithRedisChannel(cfg.QueryCache.Channel),
			querycache.WithRedisLogger(appLogger),
		), nil
	case "kafka":
		busCfg := querycache.DefaultKafkaBusConfig()
		busCfg.Brokers = cfg.Kafka.Brokers
		busCfg.Topic = cfg.Kafka.InvalidationTopic
		if cfg.Kafka.GroupID != "" {
			busCfg.GroupID = cfg.Kafka.GroupID
		}
		return querycache.NewKafkaBus(busCfg, uuid.NewString(), appLogger)
	default:
		return nil, fmt.Errorf("unknown invalidation bus %q", cfg.QueryCache.Bus)
	}
}

// newSessionStorage picks where session records live. Durable stores hold
// the upstream tokens sealed.
func newSessionStorage(cfg *config.Config, db *database.DB) (session.Storage, error) {
	var storage session.Storage
	switch cfg.Session.Store {
	case "", "memory":
		return session.NewMemoryStorage(), nil
	case "redis":
		if db.Redis == nil {
			return nil, fmt.Errorf("redis session store needs a redis connection")
		}
		storage = session.NewRedisStorage(cache.NewService(db.Redis), cfg.Session.TTL)
	case "postgres":
		if db.PostgreSQL == nil {
			return nil, fmt.Errorf("postgres session store needs a database connection")
		}
		storage = session.NewGormStorage(db.PostgreSQL, cfg.Session.TTL)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	sealer, err := session.NewSealer(cfg.Session.SealKey)
	if err != nil {
		return nil, err
	}
	return session.NewSealedStorage(storage, sealer), nil
}

func setupRouter(deps routes.Dependencies, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(middleware.RequestID(), RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	routes.NewRouter(deps).SetupRoutes(engine)
	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
