package feed

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that the feed itself could not be listed. Callers
// abort the current batch and retry on the next poll.
var ErrUnavailable = errors.New("feed unavailable")

// Candidate is one feed message carrying an image to consider for ingestion.
type Candidate struct {
	// ID is the feed-assigned message id. IDs increase over time and drive
	// the ingestion checkpoint.
	ID      int64
	Caption string
	SentAt  time.Time

	// Fetch downloads the image bytes. A failure here is scoped to this
	// candidate only.
	Fetch func(ctx context.Context) ([]byte, error)
}

// Source lists candidates from a feed in ascending id order, strictly after
// sinceID, at most limit per call.
type Source interface {
	Candidates(ctx context.Context, feedKey string, sinceID int64, limit int) ([]Candidate, error)
}
