// Package storage persists uploaded leaf images as flat files under a
// configured upload root.
package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// ImageStore writes and removes image blobs beneath a fixed root directory.
// Paths handed out are relative to the root and use forward slashes so they
// stay portable across storage backends.
type ImageStore struct {
	root string
	now  func() time.Time
}

// NewImageStore creates an ImageStore rooted at root.
func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root, now: time.Now}
}

// Root returns the upload root directory.
func (s *ImageStore) Root() string { return s.root }

// Save writes data under a timestamped name derived from the original
// filename and returns the stored path relative to the root. Intermediate
// directories are created as needed.
func (s *ImageStore) Save(filename string, data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s", s.now().Format("20060102_150405"), filepath.Base(filename))

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return path.Clean(name), nil
}

// Remove deletes the blob at the given root-relative path.
func (s *ImageStore) Remove(rel string) error {
	return os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
}
