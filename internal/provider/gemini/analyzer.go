package gemini

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/callguard/internal/domain"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
)

// Analyzer implements provider.ForensicAnalyzer with a Gemini multimodal model
type Analyzer struct {
	gen generator
}

var _ provider.ForensicAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates a Gemini analyzer
func NewAnalyzer(ctx context.Context, cfg Config) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}

	gen, err := newGenaiGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Analyzer{gen: gen}, nil
}

func (a *Analyzer) Name() string {
	return "gemini"
}

// Analyze sends the frame, transcript and liveness context to the model
func (a *Analyzer) Analyze(ctx context.Context, req provider.AnalysisRequest) (*domain.Verdict, error) {
	text, err := a.gen.Generate(ctx, buildPrompt(req), req.MIMEType, req.Image)
	if err != nil {
		return nil, fmt.Errorf("gemini analyze: %w", err)
	}

	verdict, err := parseVerdict(text)
	if err != nil {
		return nil, fmt.Errorf("gemini analyze: %w", err)
	}

	return verdict, nil
}

// Close releases the underlying client
func (a *Analyzer) Close() error {
	return a.gen.Close()
}
