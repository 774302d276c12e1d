package domain

import (
	"time"

	"github.com/google/uuid"
)

// Verdict is the forensic analyzer's judgment of one frame.
type Verdict struct {
	TrustScore  int    `json:"trust_score"`
	VisualScore int    `json:"visual_score"`
	LogicScore  int    `json:"logic_score"`
	IsFake      bool   `json:"is_fake"`
	Reason      string `json:"reason"`
}

// FallbackVerdict is reported when the analyzer could not produce a verdict.
func FallbackVerdict() Verdict {
	return Verdict{
		TrustScore: 0,
		IsFake:     true,
		Reason:     "Analysis Engine Error",
	}
}

// Scan is one evaluated frame of a session.
type Scan struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Label     string    `json:"label"`
	Failed    bool      `json:"failed"`
	Score     float64   `json:"score"`
	Inert     bool      `json:"inert"`
	Verdict   Verdict   `json:"verdict"`
	Analyzer  string    `json:"analyzer"`
	Cached    bool      `json:"cached"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}
