package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// RateLimiter caps forensic scans per session using fixed windows stored in PostgreSQL.
// Counters survive process restarts, so a client cannot reset its budget by reconnecting.
type RateLimiter struct {
	db     DB
	window time.Duration
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(db DB, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		db:     db,
		window: window,
	}
}

func scanKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("scan_rate:%s", sessionID)
}

// CheckScanLimit records one scan for the session and returns
// domain.ErrRateLimitExceeded once the window's count passes limit.
func (r *RateLimiter) CheckScanLimit(ctx context.Context, sessionID uuid.UUID, limit int) error {
	if limit <= 0 {
		return nil // No limit configured
	}

	now := time.Now()
	windowFloor := now.Add(-r.window)

	query := `
		INSERT INTO rate_limit_counters (key, count, window_start, session_id)
		VALUES ($1, 1, $2, $4)
		ON CONFLICT (key)
		DO UPDATE SET
			count = CASE
				WHEN rate_limit_counters.window_start < $3 THEN 1
				ELSE rate_limit_counters.count + 1
			END,
			window_start = CASE
				WHEN rate_limit_counters.window_start < $3 THEN $2
				ELSE rate_limit_counters.window_start
			END
		RETURNING count
	`

	var count int
	err := r.db.QueryRow(ctx, query, scanKey(sessionID), now, windowFloor, sessionID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check rate limit: %w", err)
	}

	if count > limit {
		return domain.ErrRateLimitExceeded.WithError(
			fmt.Errorf("%d/%d scans in window", count, limit),
		)
	}

	return nil
}

// CleanupExpired removes counters whose window has long passed
func (r *RateLimiter) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM rate_limit_counters WHERE window_start < $1`
	result, err := r.db.Exec(ctx, query, time.Now().Add(-r.window-time.Hour))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// ResetLimit drops the counter of a session. Called when a session closes.
func (r *RateLimiter) ResetLimit(ctx context.Context, sessionID uuid.UUID) error {
	query := `DELETE FROM rate_limit_counters WHERE key = $1`
	_, err := r.db.Exec(ctx, query, scanKey(sessionID))
	return err
}
