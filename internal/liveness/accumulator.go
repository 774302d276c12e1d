package liveness

import (
	"math"

	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
)

// priorFrame caches what the accumulator needs from the previous observation.
type priorFrame struct {
	irisX float64
	seen  bool
}

// Accumulator owns the evidence score and the prior-frame cache of one session.
// It is not safe for concurrent use.
type Accumulator struct {
	thresholds Thresholds
	weights    Weights

	score  float64
	failed bool
	prior  priorFrame
}

// NewAccumulator creates an accumulator with a zero score.
func NewAccumulator(th Thresholds, w Weights) *Accumulator {
	return &Accumulator{
		thresholds: th,
		weights:    w,
	}
}

// Observe extracts features from set using the cached prior frame, applies
// them to the score and refreshes the cache. The first observation has no
// prior iris position and never reads as static.
func (a *Accumulator) Observe(set *landmark.Set) Features {
	irisX := set.Point(landmark.LeftIris).X

	previous := irisX
	if a.prior.seen {
		previous = a.prior.irisX
	}

	f := Extract(set, previous, a.thresholds)
	if !a.prior.seen {
		f.IsUnnaturallyStatic = false
	}
	a.prior = priorFrame{irisX: irisX, seen: true}

	a.Apply(f)
	return f
}

// Apply updates the score from one frame's features and returns the new score.
// Physical evidence preempts behavioral evidence; a clean frame decays the
// score towards zero.
func (a *Accumulator) Apply(f Features) float64 {
	switch {
	case f.Physical():
		a.score += a.weights.Physical
	case f.Behavioral():
		a.score += a.weights.Behavioral
	default:
		a.score = math.Max(0, a.score-a.weights.Recovery)
	}

	a.failed = a.score > a.weights.FailThreshold
	return a.score
}

// Score returns the current evidence score.
func (a *Accumulator) Score() float64 {
	return a.score
}

// Failed reports whether the score exceeded the threshold at the last update.
func (a *Accumulator) Failed() bool {
	return a.failed
}

// Reset drops the score and the prior-frame cache.
func (a *Accumulator) Reset() {
	a.score = 0
	a.failed = false
	a.prior = priorFrame{}
}
