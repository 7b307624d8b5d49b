package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/bizscope/internal/app"
	"github.com/alimgiray/bizscope/internal/handlers"
	"github.com/alimgiray/bizscope/internal/middleware"
	"github.com/alimgiray/bizscope/pkg/config"
	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	if cfg.LLM.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, every generation will fail with a configuration error")
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(application.Metrics))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	projectHandler := handlers.NewProjectHandler(application.Projects, application.Export)
	healthHandler := handlers.NewHealthHandler(application.Workers)
	handlers.RegisterRoutes(router, projectHandler, healthHandler, application.Metrics.Handler())

	// Start workers
	if err := application.Workers.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}
	if err := application.Sweeper.Start(cfg.Sweeper.Schedule); err != nil {
		logger.Fatalf("Failed to start sweeper: %v", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.WithField("addr", server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server shutdown did not complete cleanly")
	}
	if err := application.Close(); err != nil {
		logger.WithError(err).Error("Failed to release resources")
	}
	logger.Info("Server stopped")
}
