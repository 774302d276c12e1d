package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use (also satisfied by pgxmock)
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// SessionRepositoryInterface defines operations for session data access
type SessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	UpdateState(ctx context.Context, session *domain.Session) error
	Close(ctx context.Context, id uuid.UUID) error
	ListExpired(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// ScanRepositoryInterface defines operations for scan history
type ScanRepositoryInterface interface {
	Create(ctx context.Context, scan *domain.Scan) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Scan, error)
}
