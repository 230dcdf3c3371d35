package daemon_test

import (
	"context"
	"testing"

	"chara/internal/auth"
	"chara/internal/daemon"
	"chara/internal/gallery"
	"chara/internal/imagestore"
	"chara/internal/phash"
	"chara/internal/server"
	"chara/internal/testsupport"
)

func newTestDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	images, err := imagestore.New(cfg.Paths.ImagesDir)
	if err != nil {
		t.Fatalf("imagestore.New: %v", err)
	}
	hasher, err := phash.NewHasher(cfg.Hash.Size)
	if err != nil {
		t.Fatalf("phash.NewHasher: %v", err)
	}
	gallerySvc := gallery.NewService(cfg, store, images, hasher, nil)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		t.Fatalf("auth.New: %v", err)
	}
	srv := server.New(cfg, gallerySvc, authenticator, store, nil)

	d, err := daemon.New(cfg, store, srv, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newTestDaemon(t)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail while running")
	}
	d.Stop()
	d.Stop()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	d.Stop()
}

func TestDaemonRequiresDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected constructor error")
	}
}
