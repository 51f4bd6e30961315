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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/distillate-labs/dieseldesk/internal/analytics"
	"github.com/distillate-labs/dieseldesk/internal/api"
	"github.com/distillate-labs/dieseldesk/internal/config"
	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/fetchers"
	"github.com/distillate-labs/dieseldesk/internal/logging"
	"github.com/distillate-labs/dieseldesk/internal/services"
	"github.com/distillate-labs/dieseldesk/internal/telemetry"
)

func main() {
	// Local development keeps API keys in a .env file; in production the
	// environment is populated by the deployment, so a missing file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)
	slog.SetDefault(logger)
	logging.ConfigureLogrus(cfg.LogLevel, cfg.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	tel, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redis.Close()

	priceRepo := database.NewPriceRepository(db.Pool)
	inventoryRepo := database.NewInventoryRepository(db.Pool)
	fetchLogRepo := database.NewFetchLogRepository(db.Pool)

	engine, err := analytics.New(cfg.Analytics)
	if err != nil {
		return fmt.Errorf("failed to build analytics engine: %w", err)
	}

	fred := fetchers.NewFREDClient(cfg.FRED)
	eia := fetchers.NewEIAClient(cfg.EIA)

	analyticsService := services.NewAnalyticsService(engine, priceRepo, inventoryRepo, redis, cfg, logger)
	notifier := services.NewNotifierService(cfg.Telegram, logger)

	collector := services.NewCollectorService(priceRepo, inventoryRepo, fetchLogRepo, fred, eia, redis, cfg, logger).
		WithCrackAlerts(analyticsService, notifier)
	collector.Start()
	defer collector.Stop()

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.Dependencies{
		Config:      cfg,
		DB:          db,
		Redis:       redis,
		Prices:      priceRepo,
		Inventories: inventoryRepo,
		FetchLog:    fetchLogRepo,
		Analytics:   analyticsService,
		Collector:   collector,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
