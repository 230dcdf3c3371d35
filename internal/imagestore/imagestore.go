// Package imagestore stores raw image bytes on disk under opaque keys.
//
// The catalog database holds everything about an item except its bytes; this
// package owns those, one file per item, named by a generated storage key.
package imagestore

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound reports a storage key with no backing file.
var ErrNotFound = errors.New("image not found")

// Store persists image bytes under a single root directory.
type Store struct {
	root string
}

// New constructs a Store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("image directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	return &Store{root: dir}, nil
}

// Save writes image bytes under a fresh key and returns it. The write goes
// through a temp file and rename so a crash never leaves a partial image
// behind a live key.
func (s *Store) Save(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image data")
	}
	key := uuid.NewString() + extensionFor(data)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.root, key)); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("finalize image: %w", err)
	}
	return key, nil
}

// Path resolves a storage key to its file path without touching the disk.
func (s *Store) Path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, key), nil
}

// Read returns the stored bytes for a key.
func (s *Store) Read(key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// Remove deletes the bytes behind a key. Removing an absent key is not an
// error, so record deletion stays idempotent.
func (s *Store) Remove(key string) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// validateKey rejects anything that could escape the root directory.
func validateKey(key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// extensionFor picks a file extension from the sniffed content type. Unknown
// formats fall back to .img; the catalog never interprets the extension.
func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".img"
	}
}
