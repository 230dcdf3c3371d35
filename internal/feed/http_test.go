package feed_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chara/internal/feed"
)

func TestCandidatesListsAfterCheckpoint(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feeds/waifus/messages":
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"messages": [
                {"id": 11, "caption": "Nico Robin - One Piece", "sent_at": "2026-08-30T12:00:00Z", "image_url": "/images/11.png"},
                {"id": 12, "caption": "Saber (Fate)", "sent_at": "2026-08-30T12:05:00Z", "image_url": "/images/12.png"}
            ]}`)
		case "/images/11.png":
			w.Write([]byte("image-bytes-11"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	source := feed.NewHTTPSourceWith(server.URL, "secret", server.Client())
	candidates, err := source.Candidates(context.Background(), "waifus", 10, 100)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}

	if gotPath != "/feeds/waifus/messages" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery != "after=10&limit=100" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != 11 || candidates[1].ID != 12 {
		t.Fatalf("unexpected ids: %d, %d", candidates[0].ID, candidates[1].ID)
	}
	if candidates[0].Caption != "Nico Robin - One Piece" {
		t.Fatalf("unexpected caption %q", candidates[0].Caption)
	}

	data, err := candidates[0].Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "image-bytes-11" {
		t.Fatalf("unexpected image bytes %q", data)
	}
}

func TestCandidatesDropsStaleIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"messages": [
            {"id": 5, "caption": "old", "image_url": "/images/5.png"},
            {"id": 20, "caption": "new", "image_url": "/images/20.png"}
        ]}`)
	}))
	defer server.Close()

	source := feed.NewHTTPSourceWith(server.URL, "", server.Client())
	candidates, err := source.Candidates(context.Background(), "waifus", 10, 100)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != 20 {
		t.Fatalf("expected only id 20, got %#v", candidates)
	}
}

func TestCandidatesGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	source := feed.NewHTTPSourceWith(server.URL, "", server.Client())
	if _, err := source.Candidates(context.Background(), "waifus", 0, 100); !errors.Is(err, feed.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchFailureIsNotUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feeds/waifus/messages" {
			fmt.Fprint(w, `{"messages": [{"id": 1, "caption": "x", "image_url": "/images/missing.png"}]}`)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	source := feed.NewHTTPSourceWith(server.URL, "", server.Client())
	candidates, err := source.Candidates(context.Background(), "waifus", 0, 100)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	_, err = candidates[0].Fetch(context.Background())
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if errors.Is(err, feed.ErrUnavailable) {
		t.Fatal("per-candidate fetch failures must not be ErrUnavailable")
	}
}
