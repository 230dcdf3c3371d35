package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"chara/internal/config"
	"chara/internal/feed"
	"chara/internal/logging"
)

// Manager runs the pipeline on a fixed poll interval in the background.
type Manager struct {
	pipeline *Pipeline
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager constructs a poll-loop manager around a pipeline.
func NewManager(cfg *config.Config, pipeline *Pipeline, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		pipeline: pipeline,
		logger:   logging.NewComponentLogger(logger, "scraper"),
		interval: time.Duration(cfg.Scraper.PollInterval) * time.Second,
	}
}

// Start begins background polling. The first batch runs immediately.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("scraper already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background polling and waits for the loop to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		summary, err := m.pipeline.RunBatch(ctx)
		switch {
		case err == nil:
			if summary.Listed > 0 {
				m.logger.Info("batch complete",
					logging.Int("listed", summary.Listed),
					logging.Int("accepted", summary.Accepted),
					logging.Int("duplicates", summary.Duplicates),
					logging.Int("no_hash", summary.NoHash),
					logging.Int("errors", summary.Errors),
					logging.Int("skipped", summary.Skipped),
					logging.Int64("checkpoint", summary.Checkpoint),
					logging.String(logging.FieldEventType, "ingest_batch_complete"),
				)
			}
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, feed.ErrUnavailable):
			m.logger.Warn("feed unavailable, retrying next interval",
				logging.Error(err),
				logging.String(logging.FieldEventType, "ingest_feed_unavailable"),
			)
		default:
			m.logger.Error("batch failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "ingest_batch_failed"),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.interval):
		}
	}
}
