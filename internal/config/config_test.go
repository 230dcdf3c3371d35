package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chara/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.FingerprintBits() != 64 {
		t.Fatalf("expected 64-bit default fingerprint, got %d", cfg.FingerprintBits())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if cfg.Search.DefaultTopK != 10 {
		t.Fatalf("expected default top_k 10, got %d", cfg.Search.DefaultTopK)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[scraper]
enabled = true
feed_key = "test_channel"
base_url = "http://example.test/"
batch_limit = 25

[search]
match_threshold = 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be loaded, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Scraper.BatchLimit != 25 {
		t.Fatalf("expected batch_limit override, got %d", cfg.Scraper.BatchLimit)
	}
	if cfg.Scraper.BaseURL != "http://example.test" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Scraper.BaseURL)
	}
	if cfg.Search.MatchThreshold != 8 {
		t.Fatalf("expected match_threshold override, got %d", cfg.Search.MatchThreshold)
	}
	// Untouched sections keep defaults.
	if cfg.Hash.Size != 8 {
		t.Fatalf("expected default hash size, got %d", cfg.Hash.Size)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad hash size", func(c *config.Config) { c.Hash.Size = 7 }, "phash.size"},
		{"negative threshold", func(c *config.Config) { c.Scraper.DuplicateThreshold = -1 }, "duplicate_threshold"},
		{"threshold too large", func(c *config.Config) { c.Search.MatchThreshold = 64 }, "match_threshold"},
		{"zero top_k", func(c *config.Config) { c.Search.DefaultTopK = 0 }, "default_top_k"},
		{"scraper missing feed", func(c *config.Config) { c.Scraper.Enabled = true }, "feed_key"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := config.ExpandPath("~/somewhere")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "somewhere") {
		t.Fatalf("expected home expansion, got %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[scraper]") {
		t.Fatal("sample config missing scraper section")
	}
}
