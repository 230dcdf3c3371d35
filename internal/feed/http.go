package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chara/internal/config"
)

// HTTPDoer describes the HTTP client used by the feed gateway.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxImageBytes caps a single image download. Anything larger is junk as far
// as the gallery is concerned.
const maxImageBytes = 32 << 20

// HTTPSource lists candidates from a feed gateway over HTTP.
type HTTPSource struct {
	baseURL   string
	authToken string
	client    HTTPDoer
}

// NewHTTPSource builds a source from scraper configuration.
func NewHTTPSource(cfg *config.Config) *HTTPSource {
	client := &http.Client{Timeout: time.Duration(cfg.Scraper.FetchTimeout) * time.Second}
	return NewHTTPSourceWith(cfg.Scraper.BaseURL, cfg.Scraper.AuthToken, client)
}

// NewHTTPSourceWith constructs a source with an explicit client, for tests.
func NewHTTPSourceWith(baseURL, authToken string, client HTTPDoer) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		authToken: strings.TrimSpace(authToken),
		client:    client,
	}
}

type messagePayload struct {
	ID       int64     `json:"id"`
	Caption  string    `json:"caption"`
	SentAt   time.Time `json:"sent_at"`
	ImageURL string    `json:"image_url"`
}

type messagesResponse struct {
	Messages []messagePayload `json:"messages"`
}

// Candidates lists feed messages strictly after sinceID. Gateway failures
// wrap ErrUnavailable.
func (s *HTTPSource) Candidates(ctx context.Context, feedKey string, sinceID int64, limit int) ([]Candidate, error) {
	listURL := fmt.Sprintf(
		"%s/feeds/%s/messages?after=%d&limit=%d",
		s.baseURL, url.PathEscape(feedKey), sinceID, limit,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned %d", ErrUnavailable, resp.StatusCode)
	}

	var payload messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode feed response: %v", ErrUnavailable, err)
	}

	candidates := make([]Candidate, 0, len(payload.Messages))
	for _, msg := range payload.Messages {
		if msg.ID <= sinceID {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:      msg.ID,
			Caption: msg.Caption,
			SentAt:  msg.SentAt,
			Fetch:   s.fetcher(msg.ImageURL),
		})
	}
	return candidates, nil
}

// fetcher returns a download closure for one image URL. Relative URLs resolve
// against the gateway base.
func (s *HTTPSource) fetcher(imageURL string) func(ctx context.Context) ([]byte, error) {
	if strings.HasPrefix(imageURL, "/") {
		imageURL = s.baseURL + imageURL
	}
	return func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build image request: %w", err)
		}
		s.authorize(req)

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch image: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("image fetch returned %d", resp.StatusCode)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		if len(data) > maxImageBytes {
			return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
		}
		return data, nil
	}
}

func (s *HTTPSource) authorize(req *http.Request) {
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}
}
