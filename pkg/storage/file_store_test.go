package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStoreSavesIntoMonthDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "beats")
	s, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	src := filepath.Join(t.TempDir(), "raw.mp3")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatalf("seed src: %v", err)
	}

	dst, err := s.Save(src, "beat_1.mp3")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(dst, filepath.Join("beats", "2026-03")) {
		t.Fatalf("artifact must live under the month dir, got %s", dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "audio" {
		t.Fatalf("artifact content wrong: %q err %v", data, err)
	}
}

func TestFileStoreSaveBytes(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "beats"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	s.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	dst, err := s.SaveBytes("cover.png", []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("save bytes: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}
