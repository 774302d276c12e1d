package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/callguard/internal/liveness"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Security
	APIKey string `envconfig:"API_KEY" required:"true"`

	// Landmark provider
	LandmarkProvider string `envconfig:"LANDMARK_PROVIDER" default:"mediapipe"`
	LandmarkURL      string `envconfig:"LANDMARK_URL" default:"http://localhost:5005"`

	// Forensic analyzer
	AnalyzerType string `envconfig:"ANALYZER_TYPE" default:"gemini"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Sessions
	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	ScanRateLimit   int           `envconfig:"SCAN_RATE_LIMIT" default:"60"`
	VerdictCacheTTL time.Duration `envconfig:"VERDICT_CACHE_TTL" default:"2m"`

	// Detector
	Detector DetectorConfig `envconfig:"LIVENESS"`
}

// DetectorConfig overrides the liveness detector thresholds and weights.
type DetectorConfig struct {
	FlatDepth          float64 `envconfig:"FLAT_DEPTH" default:"0.035"`
	BoundaryVisibility float64 `envconfig:"BOUNDARY_VISIBILITY" default:"0.82"`
	SquintEAR          float64 `envconfig:"SQUINT_EAR" default:"0.018"`
	StaticIris         float64 `envconfig:"STATIC_IRIS" default:"0.0001"`
	ProfileYawMin      float64 `envconfig:"PROFILE_YAW_MIN" default:"0.3"`
	ProfileYawMax      float64 `envconfig:"PROFILE_YAW_MAX" default:"3.0"`
	PhysicalWeight     float64 `envconfig:"PHYSICAL_WEIGHT" default:"3.0"`
	BehavioralWeight   float64 `envconfig:"BEHAVIORAL_WEIGHT" default:"1.5"`
	RecoveryWeight     float64 `envconfig:"RECOVERY_WEIGHT" default:"5.0"`
	FailThreshold      float64 `envconfig:"FAIL_THRESHOLD" default:"20"`
	ResumePolicy       string  `envconfig:"RESUME_POLICY" default:"reset"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := cfg.Liveness(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// DatabaseConfig is the subset of Config needed by offline tools such as
// the migration command.
type DatabaseConfig struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
}

func LoadDatabase() (*DatabaseConfig, error) {
	var cfg DatabaseConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Liveness builds the detector configuration.
func (c *Config) Liveness() (liveness.Config, error) {
	policy, err := liveness.ParseResumePolicy(c.Detector.ResumePolicy)
	if err != nil {
		return liveness.Config{}, err
	}

	th := liveness.DefaultThresholds()
	th.FlatDepth = c.Detector.FlatDepth
	th.BoundaryVisibility = c.Detector.BoundaryVisibility
	th.SquintEAR = c.Detector.SquintEAR
	th.StaticIris = c.Detector.StaticIris
	th.ProfileYawMin = c.Detector.ProfileYawMin
	th.ProfileYawMax = c.Detector.ProfileYawMax

	return liveness.Config{
		Thresholds: th,
		Weights: liveness.Weights{
			Physical:      c.Detector.PhysicalWeight,
			Behavioral:    c.Detector.BehavioralWeight,
			Recovery:      c.Detector.RecoveryWeight,
			FailThreshold: c.Detector.FailThreshold,
		},
		ResumePolicy: policy,
	}, nil
}
