package ingest_test

import (
	"context"
	"testing"
	"time"

	"chara/internal/feed"
	"chara/internal/imagestore"
	"chara/internal/ingest"
	"chara/internal/testsupport"
)

type signalingSource struct {
	polled chan struct{}
}

func (s *signalingSource) Candidates(context.Context, string, int64, int) ([]feed.Candidate, error) {
	select {
	case s.polled <- struct{}{}:
	default:
	}
	return nil, nil
}

func TestManagerStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithScraper("waifus", "http://feed.test"))
	cfg.Scraper.PollInterval = 1
	store := testsupport.MustOpenStore(t, cfg)
	images, err := imagestore.New(cfg.Paths.ImagesDir)
	if err != nil {
		t.Fatalf("imagestore.New: %v", err)
	}

	source := &signalingSource{polled: make(chan struct{}, 1)}
	pipeline := ingest.NewPipeline(cfg, store, images, source, stubHasher{}, nil)
	manager := ingest.NewManager(cfg, pipeline, nil)

	ctx := context.Background()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := manager.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail while running")
	}

	select {
	case <-source.polled:
	case <-time.After(5 * time.Second):
		t.Fatal("manager never polled the feed")
	}

	manager.Stop()
	manager.Stop()

	// After a stop, the manager can be started again.
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	manager.Stop()
}
