package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
)

type ScanRepository struct {
	pool PgxPool
}

func NewScanRepository(pool PgxPool) *ScanRepository {
	return &ScanRepository{pool: pool}
}

// Create stores one scan record
func (r *ScanRepository) Create(ctx context.Context, scan *domain.Scan) error {
	query := `
		INSERT INTO scans (
			id, session_id, label, failed, score, inert,
			trust_score, visual_score, logic_score, is_fake, reason,
			analyzer, cached, latency_ms, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		RETURNING created_at
	`

	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		scan.ID,
		scan.SessionID,
		scan.Label,
		scan.Failed,
		scan.Score,
		scan.Inert,
		scan.Verdict.TrustScore,
		scan.Verdict.VisualScore,
		scan.Verdict.LogicScore,
		scan.Verdict.IsFake,
		scan.Verdict.Reason,
		scan.Analyzer,
		scan.Cached,
		scan.LatencyMs,
	).Scan(&scan.CreatedAt)

	if err != nil {
		return fmt.Errorf("create scan: %w", err)
	}

	return nil
}

// ListBySession returns the most recent scans of a session, newest first
func (r *ScanRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Scan, error) {
	query := `
		SELECT id, session_id, label, failed, score, inert,
		       trust_score, visual_score, logic_score, is_fake, reason,
		       analyzer, cached, latency_ms, created_at
		FROM scans
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	scans := make([]domain.Scan, 0, limit)
	for rows.Next() {
		var s domain.Scan
		err := rows.Scan(
			&s.ID,
			&s.SessionID,
			&s.Label,
			&s.Failed,
			&s.Score,
			&s.Inert,
			&s.Verdict.TrustScore,
			&s.Verdict.VisualScore,
			&s.Verdict.LogicScore,
			&s.Verdict.IsFake,
			&s.Verdict.Reason,
			&s.Analyzer,
			&s.Cached,
			&s.LatencyMs,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}

	return scans, nil
}
