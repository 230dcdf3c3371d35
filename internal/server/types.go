package server

import (
	"time"

	"chara/internal/catalog"
	"chara/internal/gallery"
)

// ItemPayload is the JSON view of a catalog item.
type ItemPayload struct {
	ID              int64     `json:"id"`
	Subject         string    `json:"subject"`
	Group           string    `json:"group"`
	Caption         string    `json:"caption,omitempty"`
	Fingerprint     string    `json:"fingerprint"`
	ImageURL        string    `json:"image_url"`
	SourceMessageID *int64    `json:"source_message_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// MatchPayload is one reverse-search result.
type MatchPayload struct {
	Item       ItemPayload `json:"item"`
	Similarity float64     `json:"similarity"`
}

// ItemListResponse wraps a page of items.
type ItemListResponse struct {
	Items []ItemPayload `json:"items"`
	Count int           `json:"count"`
}

// SearchResponse wraps reverse-search matches.
type SearchResponse struct {
	Matches []MatchPayload `json:"matches"`
}

// CheckpointPayload reports one feed watermark.
type CheckpointPayload struct {
	FeedKey         string    `json:"feed_key"`
	LastProcessedID int64     `json:"last_processed_id"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StatusResponse reports daemon health.
type StatusResponse struct {
	Running        bool                `json:"running"`
	PID            int                 `json:"pid"`
	ItemCount      int64               `json:"item_count"`
	ScraperEnabled bool                `json:"scraper_enabled"`
	Checkpoints    []CheckpointPayload `json:"checkpoints"`
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the minted session token.
type LoginResponse struct {
	Token string `json:"token"`
}

func fromItem(item *catalog.Item) ItemPayload {
	return ItemPayload{
		ID:              item.ID,
		Subject:         item.Subject,
		Group:           item.Group,
		Caption:         item.Caption,
		Fingerprint:     item.Fingerprint,
		ImageURL:        "/images/" + item.StorageKey,
		SourceMessageID: item.SourceMessageID,
		CreatedAt:       item.CreatedAt,
	}
}

func fromItems(items []*catalog.Item) []ItemPayload {
	out := make([]ItemPayload, 0, len(items))
	for _, item := range items {
		out = append(out, fromItem(item))
	}
	return out
}

func fromMatches(matches []gallery.Match) []MatchPayload {
	out := make([]MatchPayload, 0, len(matches))
	for _, match := range matches {
		out = append(out, MatchPayload{Item: fromItem(match.Item), Similarity: match.Similarity})
	}
	return out
}
