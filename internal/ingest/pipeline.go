package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chara/internal/caption"
	"chara/internal/catalog"
	"chara/internal/config"
	"chara/internal/feed"
	"chara/internal/imagestore"
	"chara/internal/logging"
	"chara/internal/phash"
)

// Fingerprinter computes a perceptual fingerprint from raw image bytes.
// phash.Hasher is the production implementation.
type Fingerprinter interface {
	Compute(data []byte) (string, error)
}

// Summary reports what one batch did, bucketed by terminal state.
type Summary struct {
	Listed     int
	Accepted   int
	Duplicates int
	NoHash     int
	Errors     int
	Skipped    int
	Checkpoint int64
}

// Pipeline ingests feed candidates into the catalog.
type Pipeline struct {
	store  *catalog.Store
	images *imagestore.Store
	source feed.Source
	hasher Fingerprinter
	parser *caption.Parser
	logger *slog.Logger

	feedKey            string
	batchLimit         int
	duplicateThreshold int
}

// NewPipeline constructs an ingestion pipeline from scraper configuration.
func NewPipeline(
	cfg *config.Config,
	store *catalog.Store,
	images *imagestore.Store,
	source feed.Source,
	hasher Fingerprinter,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		store:              store,
		images:             images,
		source:             source,
		hasher:             hasher,
		parser:             caption.NewParser(caption.WithTitleCase()),
		logger:             logging.NewComponentLogger(logger, "ingest"),
		feedKey:            cfg.Scraper.FeedKey,
		batchLimit:         cfg.Scraper.BatchLimit,
		duplicateThreshold: cfg.Scraper.DuplicateThreshold,
	}
}

// RunBatch processes one bounded batch of candidates after the current
// checkpoint. Feed unavailability aborts the batch with the checkpoint left
// at the last fully processed candidate; per-candidate failures do not.
func (p *Pipeline) RunBatch(ctx context.Context) (Summary, error) {
	var summary Summary

	since, err := p.store.Checkpoint(ctx, p.feedKey)
	if err != nil {
		return summary, fmt.Errorf("load checkpoint: %w", err)
	}
	summary.Checkpoint = since

	candidates, err := p.source.Candidates(ctx, p.feedKey, since, p.batchLimit)
	if err != nil {
		return summary, fmt.Errorf("list candidates: %w", err)
	}
	summary.Listed = len(candidates)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := p.processCandidate(ctx, candidate, &summary); err != nil {
			return summary, err
		}
	}

	if final, err := p.store.Checkpoint(ctx, p.feedKey); err == nil {
		summary.Checkpoint = final
	}
	return summary, nil
}

// processCandidate walks one candidate to a terminal state. Only store
// failures propagate; everything else is absorbed into the summary.
func (p *Pipeline) processCandidate(ctx context.Context, candidate feed.Candidate, summary *Summary) error {
	logger := p.logger.With(logging.Int64(logging.FieldMessageID, candidate.ID))

	existing, err := p.store.FindBySourceMessageID(ctx, candidate.ID)
	if err != nil {
		return fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing != nil {
		summary.Skipped++
		logger.Debug("message already cataloged, skipping",
			logging.Int64(logging.FieldItemID, existing.ID),
			logging.String(logging.FieldEventType, "ingest_skipped"),
		)
		return nil
	}

	data, err := candidate.Fetch(ctx)
	if err != nil {
		// Transient: no checkpoint advance, so the next run retries it.
		summary.Errors++
		logger.Warn("image fetch failed, will retry next run",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ingest_fetch_failed"),
		)
		return nil
	}

	fingerprint, err := p.hasher.Compute(data)
	if err != nil || fingerprint == "" {
		summary.NoHash++
		logger.Warn("image not hashable, rejecting",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ingest_rejected_no_hash"),
		)
		return p.advance(ctx, candidate.ID)
	}

	duplicate, err := p.findDuplicate(ctx, fingerprint)
	if err != nil {
		return err
	}
	if duplicate != 0 {
		summary.Duplicates++
		logger.Info("near-duplicate of existing item, rejecting",
			logging.Int64(logging.FieldItemID, duplicate),
			logging.String(logging.FieldEventType, "ingest_rejected_duplicate"),
		)
		return p.advance(ctx, candidate.ID)
	}

	subject, group := p.parser.Parse(candidate.Caption)

	key, err := p.images.Save(data)
	if err != nil {
		summary.Errors++
		logger.Error("image save failed, will retry next run",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ingest_save_failed"),
		)
		return nil
	}

	messageID := candidate.ID
	item := &catalog.Item{
		Subject:         subject,
		Group:           group,
		Caption:         candidate.Caption,
		Fingerprint:     fingerprint,
		StorageKey:      key,
		SourceMessageID: &messageID,
		CreatedAt:       candidate.SentAt,
	}
	stored, err := p.store.Insert(ctx, item)
	if errors.Is(err, catalog.ErrDuplicate) {
		// Lost a race on storage key or message id. Recoverable: treat as
		// a duplicate rejection and clean up the orphaned bytes.
		_ = p.images.Remove(key)
		summary.Duplicates++
		logger.Info("insert collided with existing item, rejecting",
			logging.String(logging.FieldEventType, "ingest_rejected_duplicate"),
		)
		return p.advance(ctx, candidate.ID)
	}
	if err != nil {
		_ = p.images.Remove(key)
		return fmt.Errorf("persist item: %w", err)
	}

	summary.Accepted++
	logger.Info("candidate accepted",
		logging.Int64(logging.FieldItemID, stored.ID),
		logging.String("subject", stored.Subject),
		logging.String("group", stored.Group),
		logging.String(logging.FieldEventType, "ingest_accepted"),
	)
	return p.advance(ctx, candidate.ID)
}

// findDuplicate scans all stored fingerprints for a strict-threshold match
// and returns the matched item id, or zero when the candidate is novel.
func (p *Pipeline) findDuplicate(ctx context.Context, fingerprint string) (int64, error) {
	records, err := p.store.Fingerprints(ctx)
	if err != nil {
		return 0, fmt.Errorf("scan fingerprints: %w", err)
	}
	for _, record := range records {
		if phash.IsMatch(fingerprint, record.Fingerprint, p.duplicateThreshold) {
			return record.ID, nil
		}
	}
	return 0, nil
}

func (p *Pipeline) advance(ctx context.Context, messageID int64) error {
	if err := p.store.AdvanceCheckpoint(ctx, p.feedKey, messageID); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	return nil
}
