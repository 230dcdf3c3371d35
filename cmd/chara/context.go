package main

import (
	"errors"

	"chara/internal/catalog"
	"chara/internal/config"
	"chara/internal/gallery"
	"chara/internal/imagestore"
	"chara/internal/logging"
	"chara/internal/phash"
)

// commandContext lazily loads configuration and opens the stores shared by
// subcommands.
type commandContext struct {
	configFlag *string
	cfg        *config.Config
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// services bundles the opened stores behind a gallery service. Callers must
// invoke close when done.
type services struct {
	cfg     *config.Config
	store   *catalog.Store
	images  *imagestore.Store
	hasher  *phash.Hasher
	gallery *gallery.Service
}

func (c *commandContext) openServices() (*services, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	images, err := imagestore.New(cfg.Paths.ImagesDir)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	hasher, err := phash.NewHasher(cfg.Hash.Size)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	svc := &services{
		cfg:     cfg,
		store:   store,
		images:  images,
		hasher:  hasher,
		gallery: gallery.NewService(cfg, store, images, hasher, logging.NewNop()),
	}
	return svc, func() { _ = store.Close() }, nil
}

var errNotConfigured = errors.New("scraper is not enabled in configuration")
