package liveness

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
)

// Mode is the active-checking state of a session.
type Mode int

const (
	ModeIdle Mode = iota
	ModeActive
)

func (m Mode) String() string {
	if m == ModeActive {
		return "active"
	}
	return "idle"
}

// LandmarkDetector is the landmark provider capability a session consumes.
type LandmarkDetector interface {
	Ready() bool
	Detect(ctx context.Context, frame []byte) (*landmark.Set, error)
}

// Result is the outcome of one evaluation.
type Result struct {
	Label  Label   `json:"label"`
	Failed bool    `json:"failed"`
	Score  float64 `json:"score"`
	// Inert is true when the frame was not evaluated.
	Inert    bool      `json:"inert"`
	Features *Features `json:"features,omitempty"`
}

func inert(score float64) Result {
	return Result{Label: LabelNormal, Score: score, Inert: true}
}

// Session is the detector for one call session. Callers must serialize
// access; a Session performs no locking of its own.
type Session struct {
	config Config
	ready  func() bool
	mode   Mode
	acc    *Accumulator
}

// NewSession creates an idle session. ready reports landmark provider
// readiness; nil means landmarks are supplied pre-resolved and always ready.
func NewSession(cfg Config, ready func() bool) *Session {
	if ready == nil {
		ready = func() bool { return true }
	}
	return &Session{
		config: cfg,
		ready:  ready,
		acc:    NewAccumulator(cfg.Thresholds, cfg.Weights),
	}
}

// Ready reports whether the landmark provider can serve frames.
func (s *Session) Ready() bool {
	return s.ready()
}

// Mode returns the current active-checking mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Score returns the current evidence score.
func (s *Session) Score() float64 {
	return s.acc.Score()
}

// Failed reports the current failure flag. An idle session never reports failure.
func (s *Session) Failed() bool {
	return s.mode == ModeActive && s.acc.Failed()
}

// Activate moves the session to active checking. Under ResumeReset the
// evidence from any earlier activation is discarded.
func (s *Session) Activate() {
	if s.mode == ModeActive {
		return
	}
	if s.config.ResumePolicy != ResumeKeep {
		s.acc.Reset()
	}
	s.mode = ModeActive
}

// Deactivate pauses checking. The evidence score is left untouched.
func (s *Session) Deactivate() {
	s.mode = ModeIdle
}

// Teardown discards all evidence and returns the session to idle.
func (s *Session) Teardown() {
	s.acc.Reset()
	s.mode = ModeIdle
}

// Evaluate is the per-frame entry point. active=false forces the inert path
// and never touches the evidence score.
func (s *Session) Evaluate(set *landmark.Set, active bool) (Label, bool) {
	s.sync(active)
	r := s.Observe(set)
	return r.Label, r.Failed
}

// Observe evaluates one landmark set in the current mode.
func (s *Session) Observe(set *landmark.Set) Result {
	if s.mode != ModeActive || set == nil || !s.ready() {
		return inert(s.acc.Score())
	}

	f := s.acc.Observe(set)
	failed := s.acc.Failed()

	return Result{
		Label:    Classify(failed, f),
		Failed:   failed,
		Score:    s.acc.Score(),
		Features: &f,
	}
}

// EvaluateFrame runs the landmark detector on frame and evaluates the result.
// Detection is skipped entirely when the session is idle or the detector is
// not ready. A detector error yields an inert result alongside the error.
func (s *Session) EvaluateFrame(ctx context.Context, detector LandmarkDetector, frame []byte, active bool) (Result, error) {
	s.sync(active)

	if s.mode != ModeActive || !detector.Ready() {
		return inert(s.acc.Score()), nil
	}

	set, err := detector.Detect(ctx, frame)
	if err != nil {
		return inert(s.acc.Score()), fmt.Errorf("detect landmarks: %w", err)
	}

	return s.Observe(set), nil
}

func (s *Session) sync(active bool) {
	if active {
		s.Activate()
	} else {
		s.Deactivate()
	}
}
