package mediapipe

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/callguard/internal/landmark"
)

// Provider implements provider.LandmarkProvider on top of a MediaPipe face
// landmarker sidecar. The model loads asynchronously; until the sidecar
// reports ready, Ready returns false and sessions stay inert.
type Provider struct {
	client   *Client
	interval time.Duration
	logger   *slog.Logger
	ready    atomic.Bool
}

// NewProvider creates a new face landmarker provider
func NewProvider(config Config, logger *slog.Logger) *Provider {
	if config.HealthInterval <= 0 {
		config.HealthInterval = DefaultConfig().HealthInterval
	}
	return &Provider{
		client:   NewClient(config),
		interval: config.HealthInterval,
		logger:   logger.With("component", "mediapipe"),
	}
}

// Ready reports whether the landmarker model has loaded
func (p *Provider) Ready() bool {
	return p.ready.Load()
}

// Warmup polls the sidecar health endpoint every interval until ctx is
// cancelled, so readiness follows the sidecar if it later goes away or
// reloads its model. It is meant to run in its own goroutine.
func (p *Provider) Warmup(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		wasReady := p.Ready()
		err := p.CheckHealth(ctx)
		switch {
		case err == nil && !wasReady:
			p.logger.Info("face landmarker ready")
		case err != nil && wasReady:
			p.logger.Warn("face landmarker lost", "error", err)
		case err != nil:
			p.logger.Debug("face landmarker not ready", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// CheckHealth queries the sidecar once and updates readiness
func (p *Provider) CheckHealth(ctx context.Context) error {
	resp, err := p.client.Health(ctx)
	if err != nil {
		p.ready.Store(false)
		return fmt.Errorf("%w: %v", ErrLandmarkerUnavailable, err)
	}

	if resp.Status != statusReady {
		p.ready.Store(false)
		return ErrLandmarkerNotReady
	}

	p.ready.Store(true)
	return nil
}

// Detect returns the landmarks of the first face in the frame. A frame with no
// face yields a nil set and no error.
func (p *Provider) Detect(ctx context.Context, frame []byte) (*landmark.Set, error) {
	resp, err := p.client.Landmarks(ctx, base64.StdEncoding.EncodeToString(frame))
	if err != nil {
		return nil, fmt.Errorf("detect landmarks: %w", err)
	}

	if len(resp.Faces) == 0 {
		return nil, nil
	}

	set, err := landmark.FromMesh(resp.Faces[0].Landmarks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMesh, err)
	}

	return set, nil
}
