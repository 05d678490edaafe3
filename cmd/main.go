package main

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cafe-service/internal/handler"
	"cafe-service/internal/middleware"
	"cafe-service/internal/seed"
	"cafe-service/internal/store"
	"cafe-service/pkg/config"
	"cafe-service/pkg/database"
	"cafe-service/pkg/logger"
	"cafe-service/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting cafe service", zap.String("environment", cfg.Server.Env))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	// Initialize database (includes migrations)
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Wire the cafe store into the handlers
	cafeStore := store.NewCafeStore(database.GetDB())
	handler.InitCafeHandler(cafeStore)

	// Optionally populate the store from a remote seed document
	if cfg.Seed.URL != "" {
		loader := seed.NewLoader(cafeStore, log)
		result, err := loader.Load(context.Background(), cfg.Seed.URL)
		if err != nil {
			log.Fatal("Seed load failed", zap.String("url", cfg.Seed.URL), zap.Error(err))
		}
		log.Info("Seed load completed",
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed))
	}

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Operational endpoints
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Cafe API routes
	cafeAPI := e.Group("/api/v1/cafes")
	cafeAPI.GET("", handler.ListCafes)
	cafeAPI.POST("", handler.CreateCafe)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
