package testsupport

import (
	"path/filepath"
	"testing"

	"taxonsort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.INaturalist.AccessToken = "test"
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JournalDir = filepath.Join(base, "journal")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithToken sets the iNaturalist access token on the test config.
func WithToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.INaturalist.AccessToken = token
	}
}

// WithBaseURL points the API client at a test server.
func WithBaseURL(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.INaturalist.BaseURL = baseURL
	}
}
