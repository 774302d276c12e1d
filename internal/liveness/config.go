// Package liveness implements the physical-liveness signal-fusion detector.
//
// Each evaluated frame is reduced to a small bundle of geometric features,
// which feed a leaky evidence score. The score has to cross a fixed threshold
// before a session is reported as a spoof, so a single blink or tracking
// glitch never flips the verdict.
package liveness

import "fmt"

// Thresholds are the per-frame feature cutoffs.
type Thresholds struct {
	// FlatDepth is the minimum nose-to-ear-plane depth offset of a 3-D face.
	FlatDepth float64
	// BoundaryVisibility is the minimum mean visibility of the face perimeter.
	BoundaryVisibility float64
	// SquintEAR is the eyelid separation below which an eye counts as narrowed.
	SquintEAR float64
	// StaticIris is the minimum iris x displacement between consecutive frames.
	StaticIris float64
	// ProfileYawMin and ProfileYawMax bound the yaw ratio of a frontal-ish face.
	ProfileYawMin float64
	ProfileYawMax float64
	// YawEpsilon guards the yaw ratio denominator.
	YawEpsilon float64
}

// DefaultThresholds returns the reference thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FlatDepth:          0.035,
		BoundaryVisibility: 0.82,
		SquintEAR:          0.018,
		StaticIris:         0.0001,
		ProfileYawMin:      0.3,
		ProfileYawMax:      3.0,
		YawEpsilon:         0.001,
	}
}

// Weights control how fast evidence accumulates and decays.
type Weights struct {
	// Physical is added on a flat or blurry-boundary frame.
	Physical float64
	// Behavioral is added on a squinting or static-eye frame.
	Behavioral float64
	// Recovery is subtracted on a clean frame.
	Recovery float64
	// FailThreshold is the score above which the session is failed.
	FailThreshold float64
}

// DefaultWeights returns the reference weights.
func DefaultWeights() Weights {
	return Weights{
		Physical:      3.0,
		Behavioral:    1.5,
		Recovery:      5.0,
		FailThreshold: 20,
	}
}

// ResumePolicy decides what happens to the evidence score when checking is
// re-activated after a pause.
type ResumePolicy string

const (
	// ResumeReset starts every activation from a clean score.
	ResumeReset ResumePolicy = "reset"
	// ResumeKeep continues from the score frozen at deactivation.
	ResumeKeep ResumePolicy = "keep"
)

// ParseResumePolicy validates a policy name. An empty name yields ResumeReset.
func ParseResumePolicy(s string) (ResumePolicy, error) {
	switch ResumePolicy(s) {
	case ResumeReset, "":
		return ResumeReset, nil
	case ResumeKeep:
		return ResumeKeep, nil
	default:
		return "", fmt.Errorf("unknown resume policy %q (supported: %s, %s)", s, ResumeReset, ResumeKeep)
	}
}

// Config bundles everything a Session needs.
type Config struct {
	Thresholds   Thresholds
	Weights      Weights
	ResumePolicy ResumePolicy
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Thresholds:   DefaultThresholds(),
		Weights:      DefaultWeights(),
		ResumePolicy: ResumeReset,
	}
}
