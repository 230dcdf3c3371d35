package imagestore_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"chara/internal/imagestore"
	"chara/internal/testsupport"
)

func TestSaveReadRemove(t *testing.T) {
	store, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	data := testsupport.PNG(t, 1)
	key, err := store.Save(data)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected sniffed .png extension, got %q", key)
	}
	if key != filepath.Base(key) {
		t.Fatalf("key must be a bare file name, got %q", key)
	}

	got, err := store.Read(key)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("read bytes differ from saved bytes")
	}

	if err := store.Remove(key); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Read(key); !errors.Is(err, imagestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := store.Remove(key); err != nil {
		t.Fatalf("second Remove should be a no-op, got %v", err)
	}
}

func TestSaveGeneratesUniqueKeys(t *testing.T) {
	store, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	data := testsupport.PNG(t, 1)
	first, err := store.Save(data)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := store.Save(data)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first == second {
		t.Fatalf("identical bytes must still get distinct keys, got %q twice", first)
	}
}

func TestSaveRejectsEmpty(t *testing.T) {
	store, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := store.Save(nil); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	store, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for _, key := range []string{"", "../escape.png", "a/b.png", `a\b.png`} {
		if _, err := store.Path(key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
