package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants shared by the daemon and CLI.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ImagesDir) == "" {
		problems = append(problems, "paths.images_dir must be set")
	}

	switch c.Hash.Size {
	case 8, 16:
	default:
		problems = append(problems, fmt.Sprintf("phash.size must be 8 or 16 (got %d)", c.Hash.Size))
	}

	bits := c.FingerprintBits()
	if c.Scraper.DuplicateThreshold < 0 || c.Scraper.DuplicateThreshold >= bits {
		problems = append(problems, fmt.Sprintf("scraper.duplicate_threshold must be in [0, %d)", bits))
	}
	if c.Search.MatchThreshold < 0 || c.Search.MatchThreshold >= bits {
		problems = append(problems, fmt.Sprintf("search.match_threshold must be in [0, %d)", bits))
	}
	if c.Search.DefaultTopK <= 0 {
		problems = append(problems, "search.default_top_k must be positive")
	}

	if c.Scraper.Enabled {
		if c.Scraper.FeedKey == "" {
			problems = append(problems, "scraper.feed_key is required when the scraper is enabled")
		}
		if c.Scraper.BaseURL == "" {
			problems = append(problems, "scraper.base_url is required when the scraper is enabled")
		}
		if c.Scraper.PollInterval <= 0 {
			problems = append(problems, "scraper.poll_interval must be positive")
		}
		if c.Scraper.BatchLimit <= 0 || c.Scraper.BatchLimit > 1000 {
			problems = append(problems, "scraper.batch_limit must be in [1, 1000]")
		}
		if c.Scraper.FetchTimeout <= 0 {
			problems = append(problems, "scraper.fetch_timeout must be positive")
		}
	}

	if c.Server.SessionTTLHours <= 0 {
		problems = append(problems, "server.session_ttl_hours must be positive")
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json (got %q)", c.Logging.Format))
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
