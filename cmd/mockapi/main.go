package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobpilot-admin/internal/mockapi"
	"jobpilot-admin/pkg/logger"
)

// Runs an in-memory JobPilot API for local development.
// Point UPSTREAM_BASE_URL of the admin service at http://localhost:9090.
func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	opts := mockapi.DefaultOptions()
	opts.Logger = appLogger
	if v := os.Getenv("MOCKAPI_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			opts.Seed = seed
		}
	}
	if v := os.Getenv("MOCKAPI_ADMIN_EMAIL"); v != "" {
		opts.AdminEmail = v
	}
	if v := os.Getenv("MOCKAPI_ADMIN_PASSWORD"); v != "" {
		opts.AdminPassword = v
	}

	port := os.Getenv("MOCKAPI_PORT")
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mockapi.New(opts).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Mock JobPilot API listening",
			slog.String("address", srv.Addr),
			slog.String("admin", opts.AdminEmail),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("mock API failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("mock API shutdown failed", slog.Any("error", err))
	}
}
