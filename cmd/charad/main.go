// Command charad is the gallery daemon: it serves the HTTP API and, when
// configured, polls the feed gateway for new images.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"chara/internal/auth"
	"chara/internal/catalog"
	"chara/internal/config"
	"chara/internal/daemon"
	"chara/internal/feed"
	"chara/internal/gallery"
	"chara/internal/imagestore"
	"chara/internal/ingest"
	"chara/internal/logging"
	"chara/internal/phash"
	"chara/internal/server"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Error("open catalog store", logging.Error(err))
		os.Exit(1)
	}

	images, err := imagestore.New(cfg.Paths.ImagesDir)
	if err != nil {
		logger.Error("open image store", logging.Error(err))
		os.Exit(1)
	}
	hasher, err := phash.NewHasher(cfg.Hash.Size)
	if err != nil {
		logger.Error("init hasher", logging.Error(err))
		os.Exit(1)
	}

	gallerySvc := gallery.NewService(cfg, store, images, hasher, logger)
	authenticator, err := auth.New(cfg, store)
	if err != nil {
		logger.Error("init authenticator", logging.Error(err))
		os.Exit(1)
	}
	srv := server.New(cfg, gallerySvc, authenticator, store, logger)

	var scraper *ingest.Manager
	if cfg.Scraper.Enabled {
		source := feed.NewHTTPSource(cfg)
		pipeline := ingest.NewPipeline(cfg, store, images, source, hasher, logger)
		scraper = ingest.NewManager(cfg, pipeline, logger)
	}

	d, err := daemon.New(cfg, store, srv, scraper, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("charad shutting down")
}
