package config

import (
	"os"
	"testing"
	"time"

	"github.com/saturnino-fabrica-de-software/callguard/internal/liveness"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads with all required vars",
			envVars: map[string]string{
				"PORT":          "8080",
				"ENV":           "production",
				"DATABASE_URL":  "postgres://localhost/test",
				"API_KEY":       "secret123",
				"ANALYZER_TYPE": "rekognition",
				"SESSION_TTL":   "5m",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.DatabaseURL == "postgres://localhost/test" &&
					c.APIKey == "secret123" &&
					c.AnalyzerType == "rekognition" &&
					c.SessionTTL == 5*time.Minute
			},
		},
		{
			name: "uses defaults when optional vars missing",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
				"API_KEY":      "secret123",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 3000 &&
					c.Environment == "development" &&
					c.AnalyzerType == "gemini" &&
					c.GeminiModel == "gemini-1.5-flash" &&
					c.LandmarkProvider == "mediapipe" &&
					c.LandmarkURL == "http://localhost:5005" &&
					c.ScanRateLimit == 60 &&
					c.VerdictCacheTTL == 2*time.Minute &&
					c.Detector.ResumePolicy == "reset"
			},
		},
		{
			name: "fails when DATABASE_URL missing",
			envVars: map[string]string{
				"API_KEY": "secret123",
			},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails when API_KEY missing",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
			},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails on unknown resume policy",
			envVars: map[string]string{
				"DATABASE_URL":           "postgres://localhost/test",
				"API_KEY":                "secret123",
				"LIVENESS_RESUME_POLICY": "forever",
			},
			wantErr: true,
			check:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Liveness(t *testing.T) {
	os.Clearenv()
	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("API_KEY", "secret123")
	os.Setenv("LIVENESS_FLAT_DEPTH", "0.05")
	os.Setenv("LIVENESS_FAIL_THRESHOLD", "12")
	os.Setenv("LIVENESS_RESUME_POLICY", "keep")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	lc, err := cfg.Liveness()
	if err != nil {
		t.Fatalf("Liveness() unexpected error: %v", err)
	}

	if lc.Thresholds.FlatDepth != 0.05 {
		t.Errorf("FlatDepth = %v, want 0.05", lc.Thresholds.FlatDepth)
	}
	if lc.Thresholds.BoundaryVisibility != 0.82 {
		t.Errorf("BoundaryVisibility = %v, want 0.82", lc.Thresholds.BoundaryVisibility)
	}
	if lc.Weights.FailThreshold != 12 {
		t.Errorf("FailThreshold = %v, want 12", lc.Weights.FailThreshold)
	}
	if lc.ResumePolicy != liveness.ResumeKeep {
		t.Errorf("ResumePolicy = %v, want %v", lc.ResumePolicy, liveness.ResumeKeep)
	}
}

func TestConfig_LivenessDefaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("API_KEY", "secret123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	lc, err := cfg.Liveness()
	if err != nil {
		t.Fatalf("Liveness() unexpected error: %v", err)
	}

	if lc != liveness.DefaultConfig() {
		t.Errorf("Liveness() = %+v, want %+v", lc, liveness.DefaultConfig())
	}
}

func TestLoadDatabase(t *testing.T) {
	os.Clearenv()
	if _, err := LoadDatabase(); err == nil {
		t.Errorf("LoadDatabase() expected error without DATABASE_URL")
	}

	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	cfg, err := LoadDatabase()
	if err != nil {
		t.Fatalf("LoadDatabase() unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/test" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}
