package service

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner drops expired rows from a TTL-bound table
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// SessionWorkerConfig holds configuration for the worker
type SessionWorkerConfig struct {
	Interval  time.Duration // Sweep interval (default: 30 seconds)
	BatchSize int           // Max sessions closed per sweep (default: 100)
}

// DefaultSessionWorkerConfig returns default configuration
func DefaultSessionWorkerConfig() SessionWorkerConfig {
	return SessionWorkerConfig{
		Interval:  30 * time.Second,
		BatchSize: 100,
	}
}

// SessionWorker periodically tears down expired sessions and prunes the
// verdict cache and rate limit counters.
type SessionWorker struct {
	sessions *SessionService
	cleaners []Cleaner
	logger   *slog.Logger

	interval  time.Duration
	batchSize int
}

// NewSessionWorker creates a new worker
func NewSessionWorker(sessions *SessionService, logger *slog.Logger, config SessionWorkerConfig, cleaners ...Cleaner) *SessionWorker {
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	return &SessionWorker{
		sessions:  sessions,
		cleaners:  cleaners,
		logger:    logger.With("component", "session_worker"),
		interval:  config.Interval,
		batchSize: config.BatchSize,
	}
}

// Run sweeps on every tick until ctx is cancelled
func (w *SessionWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("session worker started", "interval", w.interval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("session worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs one cleanup pass
func (w *SessionWorker) Sweep(ctx context.Context) {
	closed, err := w.sessions.CloseExpired(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("failed to list expired sessions", "error", err)
	}
	if closed > 0 {
		w.logger.Info("closed expired sessions", "count", closed)
	}

	for _, c := range w.cleaners {
		n, err := c.CleanupExpired(ctx)
		if err != nil {
			w.logger.Error("cleanup failed", "error", err)
			continue
		}
		if n > 0 {
			w.logger.Debug("cleanup removed rows", "count", n)
		}
	}
}
