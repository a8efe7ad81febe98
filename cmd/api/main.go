package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	middleware "github.com/rgdevment/scam-registry/internal/platform/http/middleware"

	"github.com/rgdevment/scam-registry/internal/app"
	"github.com/rgdevment/scam-registry/internal/config"
	httpHandler "github.com/rgdevment/scam-registry/internal/platform/http"
	"github.com/rgdevment/scam-registry/internal/platform/logger"
)

func main() {
	cfg, envFound, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if !envFound {
		zapLogger.Info("No .env file found, using system environment variables")
	}
	if cfg.APIKey == "" {
		zapLogger.Warn("API_MASTER_KEY not set, write endpoints are open")
	}

	zapLogger.Info("Starting scam registry API",
		zap.String("env", cfg.AppEnv),
		zap.String("store", cfg.StoreDriver))

	application, err := app.New(context.Background(), cfg, zapLogger, true)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	handler := httpHandler.NewHandler(application.Service, zapLogger, cfg.APIKey,
		httpHandler.WithClassifierState(application.ClassifierState))

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(zapLogger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		zapLogger.Info("Server listening", zap.String("addr", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}
