package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is a guarded call. Detector evidence lives only in memory; this
// row is the audit trail of the session's lifecycle and last verdict.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	Label     string     `json:"label"`
	Active    bool       `json:"active"`
	Failed    bool       `json:"failed"`
	Score     float64    `json:"score"`
	ScanCount int        `json:"scan_count"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsClosed reports whether the session was torn down.
func (s *Session) IsClosed() bool {
	return s.ClosedAt != nil
}
