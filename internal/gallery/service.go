package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"chara/internal/caption"
	"chara/internal/catalog"
	"chara/internal/config"
	"chara/internal/imagestore"
	"chara/internal/logging"
	"chara/internal/phash"
)

var (
	// ErrUndecodable is the typed client error for query or upload bytes
	// that are not a readable image.
	ErrUndecodable = errors.New("image is not decodable")

	// ErrNotFound reports an operation against an absent item.
	ErrNotFound = errors.New("item not found")
)

// Fingerprinter computes a perceptual fingerprint from raw image bytes.
type Fingerprinter interface {
	Compute(data []byte) (string, error)
}

// Match is one reverse-search result.
type Match struct {
	Item       *catalog.Item
	Similarity float64
}

// Service exposes gallery operations over the catalog and image store.
type Service struct {
	store  *catalog.Store
	images *imagestore.Store
	hasher Fingerprinter
	logger *slog.Logger

	matchThreshold int
	defaultTopK    int
}

// NewService constructs a gallery service from search configuration.
func NewService(
	cfg *config.Config,
	store *catalog.Store,
	images *imagestore.Store,
	hasher Fingerprinter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		store:          store,
		images:         images,
		hasher:         hasher,
		logger:         logging.NewComponentLogger(logger, "gallery"),
		matchThreshold: cfg.Search.MatchThreshold,
		defaultTopK:    cfg.Search.DefaultTopK,
	}
}

// ReverseSearch finds cataloged items visually similar to the query image.
// Results are ordered by similarity, newest first on ties, at most topK
// entries; topK <= 0 uses the configured default. Undecodable query bytes
// return ErrUndecodable rather than an empty result.
func (s *Service) ReverseSearch(ctx context.Context, imageBytes []byte, topK int) ([]Match, error) {
	fingerprint, err := s.hasher.Compute(imageBytes)
	if err != nil || fingerprint == "" {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	records, err := s.store.Fingerprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan fingerprints: %w", err)
	}

	type scored struct {
		record     catalog.FingerprintRecord
		similarity float64
	}
	var hits []scored
	for _, record := range records {
		if !phash.IsMatch(fingerprint, record.Fingerprint, s.matchThreshold) {
			continue
		}
		hits = append(hits, scored{record: record, similarity: phash.Similarity(fingerprint, record.Fingerprint)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].similarity != hits[j].similarity {
			return hits[i].similarity > hits[j].similarity
		}
		if !hits[i].record.CreatedAt.Equal(hits[j].record.CreatedAt) {
			return hits[i].record.CreatedAt.After(hits[j].record.CreatedAt)
		}
		return hits[i].record.ID > hits[j].record.ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		item, err := s.store.GetByID(ctx, hit.record.ID)
		if err != nil {
			return nil, fmt.Errorf("load match: %w", err)
		}
		if item == nil {
			// Deleted between scan and load; drop it.
			continue
		}
		matches = append(matches, Match{Item: item, Similarity: hit.similarity})
	}
	return matches, nil
}

// Upload stores a curator-provided image without duplicate rejection. Blank
// subject or group fall back to Unknown, matching the caption parser.
func (s *Service) Upload(ctx context.Context, subject, group string, imageBytes []byte) (*catalog.Item, error) {
	fingerprint, err := s.hasher.Compute(imageBytes)
	if err != nil || fingerprint == "" {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = caption.Unknown
	}
	group = strings.TrimSpace(group)
	if group == "" {
		group = caption.Unknown
	}

	key, err := s.images.Save(imageBytes)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}
	item, err := s.store.Insert(ctx, &catalog.Item{
		Subject:     subject,
		Group:       group,
		Fingerprint: fingerprint,
		StorageKey:  key,
	})
	if err != nil {
		_ = s.images.Remove(key)
		return nil, fmt.Errorf("persist upload: %w", err)
	}

	s.logger.Info("image uploaded",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("subject", item.Subject),
		logging.String(logging.FieldEventType, "gallery_upload"),
	)
	return item, nil
}

// Get returns one item, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*catalog.Item, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return item, nil
}

// List returns items newest first, filtered and paged by opts.
func (s *Service) List(ctx context.Context, opts catalog.ListOptions) ([]*catalog.Item, error) {
	return s.store.List(ctx, opts)
}

// Count returns the catalog size.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// ImagePath resolves an item's storage key to its on-disk path.
func (s *Service) ImagePath(key string) (string, error) {
	return s.images.Path(key)
}

// Delete removes an item's record and its stored bytes. Deleting an absent
// item returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if _, err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.images.Remove(item.StorageKey); err != nil {
		s.logger.Warn("record deleted but image bytes remain",
			logging.Int64(logging.FieldItemID, id),
			logging.Error(err),
			logging.String(logging.FieldEventType, "gallery_orphan_bytes"),
		)
	}

	s.logger.Info("item deleted",
		logging.Int64(logging.FieldItemID, id),
		logging.String(logging.FieldEventType, "gallery_delete"),
	)
	return nil
}
