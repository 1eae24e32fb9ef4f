// Package storage persists beat artifacts locally and mirrors backups to
// S3-compatible object storage.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps beat artifacts on the local filesystem, grouped by month
// under root (beats/2026-03/...).
type FileStore struct {
	root string
	now  func() time.Time
}

// NewFileStore creates the root directory when absent.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &FileStore{root: root, now: time.Now}, nil
}

// Save copies src into the current month directory under name and returns the
// stored path.
func (s *FileStore) Save(src, name string) (string, error) {
	dir := filepath.Join(s.root, s.now().UTC().Format("2006-01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create month dir: %w", err)
	}
	dst := filepath.Join(dir, name)

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copy artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

// SaveBytes writes raw content into the current month directory.
func (s *FileStore) SaveBytes(name string, data []byte) (string, error) {
	dir := filepath.Join(s.root, s.now().UTC().Format("2006-01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create month dir: %w", err)
	}
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return dst, nil
}

// Root returns the artifact root directory.
func (s *FileStore) Root() string { return s.root }
