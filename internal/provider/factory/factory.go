package factory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/callguard/internal/config"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider/gemini"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider/mediapipe"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/callguard/internal/provider/rekognition"
)

// AnalyzerType defines supported forensic analyzers
type AnalyzerType string

const (
	// AnalyzerTypeGemini is the Gemini multimodal analyzer (frame + transcript)
	AnalyzerTypeGemini AnalyzerType = "gemini"
	// AnalyzerTypeRekognition is the AWS Rekognition analyzer (frame only)
	AnalyzerTypeRekognition AnalyzerType = "rekognition"
	// AnalyzerTypeMock is a deterministic analyzer for dev/test
	AnalyzerTypeMock AnalyzerType = "mock"
)

// LandmarkType defines supported landmark providers
type LandmarkType string

const (
	// LandmarkTypeMediaPipe is the MediaPipe face landmarker sidecar
	LandmarkTypeMediaPipe LandmarkType = "mediapipe"
	// LandmarkTypeMock returns a synthetic live face
	LandmarkTypeMock LandmarkType = "mock"
)

// NewAnalyzer creates a ForensicAnalyzer based on configuration
//
// Environment variables:
//   - ANALYZER_TYPE: "gemini", "rekognition" or "mock" (default: "gemini")
//   - GEMINI_API_KEY, GEMINI_MODEL: Gemini credentials and model
//   - AWS_REGION: AWS region for Rekognition (credentials via AWS SDK credential chain)
func NewAnalyzer(ctx context.Context, cfg *config.Config) (provider.ForensicAnalyzer, error) {
	switch AnalyzerType(cfg.AnalyzerType) {
	case AnalyzerTypeGemini, "":
		geminiConfig := gemini.DefaultConfig()
		geminiConfig.APIKey = cfg.GeminiAPIKey
		if cfg.GeminiModel != "" {
			geminiConfig.Model = cfg.GeminiModel
		}

		a, err := gemini.NewAnalyzer(ctx, geminiConfig)
		if err != nil {
			return nil, fmt.Errorf("create gemini analyzer: %w", err)
		}
		return a, nil

	case AnalyzerTypeRekognition:
		rekogConfig := rekognition.DefaultConfig()
		rekogConfig.Region = cfg.AWSRegion

		a, err := rekognition.NewAnalyzer(ctx, rekogConfig)
		if err != nil {
			return nil, fmt.Errorf("create rekognition analyzer: %w", err)
		}
		return a, nil

	case AnalyzerTypeMock:
		return mock.NewAnalyzer(), nil

	default:
		return nil, fmt.Errorf("unknown analyzer type: %s (supported: %s, %s, %s)",
			cfg.AnalyzerType, AnalyzerTypeGemini, AnalyzerTypeRekognition, AnalyzerTypeMock)
	}
}

// LandmarkProvider is a provider.LandmarkProvider that may need warming up
type LandmarkProvider interface {
	provider.LandmarkProvider
	Warmup(ctx context.Context)
}

// NewLandmarkProvider creates the landmark provider based on configuration
func NewLandmarkProvider(cfg *config.Config, logger *slog.Logger) (LandmarkProvider, error) {
	switch LandmarkType(cfg.LandmarkProvider) {
	case LandmarkTypeMediaPipe, "":
		mpConfig := mediapipe.DefaultConfig()
		if cfg.LandmarkURL != "" {
			mpConfig.BaseURL = cfg.LandmarkURL
		}
		return mediapipe.NewProvider(mpConfig, logger), nil

	case LandmarkTypeMock:
		return warmProvider{mock.NewLandmarkProvider()}, nil

	default:
		return nil, fmt.Errorf("unknown landmark provider: %s (supported: %s, %s)",
			cfg.LandmarkProvider, LandmarkTypeMediaPipe, LandmarkTypeMock)
	}
}

// warmProvider adapts an always-ready provider to LandmarkProvider
type warmProvider struct {
	provider.LandmarkProvider
}

func (warmProvider) Warmup(context.Context) {}
