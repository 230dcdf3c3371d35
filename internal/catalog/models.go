package catalog

import "time"

// Item is a cataloged image persisted in SQLite. StorageKey names the image
// bytes on disk; Fingerprint is the canonical hex perceptual hash.
type Item struct {
	ID              int64
	Subject         string
	Group           string
	Caption         string
	Fingerprint     string
	StorageKey      string
	SourceMessageID *int64
	CreatedAt       time.Time
}

// FingerprintRecord is the slim projection used for similarity scans.
type FingerprintRecord struct {
	ID          int64
	Fingerprint string
	CreatedAt   time.Time
}

// Checkpoint records the high-water mark of processed feed messages. Ingestion
// resumes strictly after LastProcessedID.
type Checkpoint struct {
	FeedKey         string
	LastProcessedID int64
	UpdatedAt       time.Time
}

// Session is an authenticated admin session.
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ListOptions narrows and pages item listings. Zero-value fields are ignored;
// a zero Limit means no limit. Search is a case-insensitive substring match
// against subject and group, while Subject and Group match exactly.
type ListOptions struct {
	Subject string
	Group   string
	Search  string
	Limit   int
	Offset  int
}
