package testsupport

import (
	"path/filepath"
	"testing"

	"chara/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ImagesDir = filepath.Join(base, "images")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Server.AdminPassword = "test-password"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithScraper enables the scraper against the given feed endpoint.
func WithScraper(feedKey, baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scraper.Enabled = true
		cfg.Scraper.FeedKey = feedKey
		cfg.Scraper.BaseURL = baseURL
	}
}
