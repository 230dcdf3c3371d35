package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Checkpoint returns the last processed feed message id for a feed key, or
// zero when the feed has never been processed.
func (s *Store) Checkpoint(ctx context.Context, feedKey string) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT last_processed_id FROM checkpoints WHERE feed_key = ?`,
		feedKey,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get checkpoint: %w", err)
	}
	return last, nil
}

// AdvanceCheckpoint moves the feed watermark forward. The update is monotonic:
// replaying an older message id never rewinds the checkpoint, which keeps
// checkpoint writes idempotent under crash-and-retry.
func (s *Store) AdvanceCheckpoint(ctx context.Context, feedKey string, messageID int64) error {
	if feedKey == "" {
		return errors.New("feed key is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO checkpoints (feed_key, last_processed_id, updated_at)
         VALUES (?, ?, ?)
         ON CONFLICT (feed_key) DO UPDATE SET
             last_processed_id = MAX(last_processed_id, excluded.last_processed_id),
             updated_at = excluded.updated_at`,
		feedKey,
		messageID,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	return nil
}

// Checkpoints returns every feed watermark, for status reporting.
func (s *Store) Checkpoints(ctx context.Context) ([]Checkpoint, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT feed_key, last_processed_id, updated_at FROM checkpoints ORDER BY feed_key`,
	)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []Checkpoint
	for rows.Next() {
		var (
			cp         Checkpoint
			updatedRaw string
		)
		if err := rows.Scan(&cp.FeedKey, &cp.LastProcessedID, &updatedRaw); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		if updated, err := parseTimeString(updatedRaw); err == nil {
			cp.UpdatedAt = updated
		}
		checkpoints = append(checkpoints, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return checkpoints, nil
}
