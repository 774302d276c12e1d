package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/callguard/internal/api"
	"github.com/saturnino-fabrica-de-software/callguard/internal/audit"
	"github.com/saturnino-fabrica-de-software/callguard/internal/cache"
	"github.com/saturnino-fabrica-de-software/callguard/internal/config"
	"github.com/saturnino-fabrica-de-software/callguard/internal/database"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider/factory"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ratelimit"
	"github.com/saturnino-fabrica-de-software/callguard/internal/repository"
	"github.com/saturnino-fabrica-de-software/callguard/internal/service"
	"github.com/saturnino-fabrica-de-software/callguard/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting Callguard API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("analyzer", cfg.AnalyzerType),
		slog.String("landmarks", cfg.LandmarkProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	sqlDB, err := database.OpenSQL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.MigrateUp(sqlDB, "callguard"); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	_ = sqlDB.Close()

	pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Providers
	analyzer, err := factory.NewAnalyzer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	landmarks, err := factory.NewLandmarkProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create landmark provider: %w", err)
	}
	// sessions stay inert until the landmark model reports ready
	go landmarks.Warmup(ctx)

	livenessCfg, err := cfg.Liveness()
	if err != nil {
		return fmt.Errorf("invalid detector config: %w", err)
	}

	// Event hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Storage
	sessionRepo := repository.NewSessionRepository(pool)
	scanRepo := repository.NewScanRepository(pool)
	pgCache := cache.NewPGCache(pool)
	scanLimiter := ratelimit.NewRateLimiter(pool, time.Minute)

	// Services
	sessions := service.NewSessionService(
		sessionRepo,
		scanLimiter,
		hub,
		audit.NewSlogLogger(logger),
		logger,
		livenessCfg,
	).WithTTL(cfg.SessionTTL)

	scans := service.NewScanService(sessions, scanRepo, landmarks, analyzer, logger).
		WithCache(cache.NewVerdictCache(pgCache, cfg.VerdictCacheTTL)).
		WithScanLimit(cfg.ScanRateLimit)

	// Background sweeper for expired sessions, cache entries and counters
	worker := service.NewSessionWorker(sessions, logger, service.DefaultSessionWorkerConfig(), pgCache, scanLimiter)
	go worker.Run(ctx)

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Sessions:  sessions,
		Scans:     scans,
		Hub:       hub,
		DB:        pool,
		Landmarks: landmarks,
		APIKey:    cfg.APIKey,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- router.Shutdown() }()

	select {
	case err := <-shutdownErr:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")

	return nil
}
