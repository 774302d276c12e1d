package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
)

// LandmarkProvider resolves a face-landmark set from a raw frame
type LandmarkProvider interface {
	// Ready reports whether the underlying model has finished loading
	Ready() bool

	// Detect returns the landmarks of the first face in the frame, or nil when
	// no face was found
	Detect(ctx context.Context, frame []byte) (*landmark.Set, error)
}

// ForensicAnalyzer judges whether the person in a frame is being impersonated
type ForensicAnalyzer interface {
	// Name identifies the analyzer in logs and scan records
	Name() string

	Analyze(ctx context.Context, req AnalysisRequest) (*domain.Verdict, error)
}

// AnalysisRequest is one frame plus the call context the analyzer weighs it against
type AnalysisRequest struct {
	Image      []byte
	MIMEType   string
	Transcript string

	// LivenessLabel and AdhesionFailure come from the session detector.
	// Empty label means no detector ran for this frame.
	LivenessLabel   string
	AdhesionFailure bool
}

// ClampScore bounds a score to 0..100
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
