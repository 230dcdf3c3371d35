package testsupport

import (
	"context"
	"fmt"
	"testing"

	"chara/internal/catalog"
	"chara/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// InsertItem inserts a catalog item with generated storage key for tests.
func InsertItem(t testing.TB, store *catalog.Store, subject, group, fingerprint string) *catalog.Item {
	t.Helper()

	item, err := store.Insert(context.Background(), &catalog.Item{
		Subject:     subject,
		Group:       group,
		Fingerprint: fingerprint,
		StorageKey:  fmt.Sprintf("test-%s-%s.png", subject, fingerprint),
	})
	if err != nil {
		t.Fatalf("store.Insert: %v", err)
	}
	return item
}
