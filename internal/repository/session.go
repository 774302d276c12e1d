package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

type SessionRepository struct {
	pool PgxPool
}

func NewSessionRepository(pool PgxPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create inserts a new session row
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, label, active, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.Label,
		session.Active,
		session.ExpiresAt,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID, closed ones included
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, label, active, failed, score, scan_count, expires_at, created_at, updated_at, closed_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.Label,
		&session.Active,
		&session.Failed,
		&session.Score,
		&session.ScanCount,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ClosedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return &session, nil
}

// UpdateState records the latest detector snapshot and label and pushes the expiry forward
func (r *SessionRepository) UpdateState(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE sessions
		SET active = $2, failed = $3, score = $4, scan_count = $5, expires_at = $6, label = $7, updated_at = NOW()
		WHERE id = $1 AND closed_at IS NULL
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		session.ID,
		session.Active,
		session.Failed,
		session.Score,
		session.ScanCount,
		session.ExpiresAt,
		session.Label,
	).Scan(&session.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("update session state: %w", err)
	}

	return nil
}

// Close marks a session as closed. Closing twice reports ErrSessionNotFound.
func (r *SessionRepository) Close(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE sessions
		SET active = FALSE, closed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND closed_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// ListExpired returns open sessions past their expiry, oldest first
func (r *SessionRepository) ListExpired(ctx context.Context, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM sessions
		WHERE closed_at IS NULL AND expires_at < NOW()
		ORDER BY expires_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired session: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expired sessions: %w", err)
	}

	return ids, nil
}
