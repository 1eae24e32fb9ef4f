package eventlog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestPrintfAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empire.log")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log.now = func() time.Time {
		return time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	}
	log.Printf("generation session complete: %d beats", 3)
	log.Printf("upload failed for beat %s", "auto_trap_1")
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := regexp.MustCompile(`^\[2026-03-01 14:30:00\] .+$`)
	for _, line := range lines {
		if !want.MatchString(line) {
			t.Fatalf("line %q does not match [timestamp] message format", line)
		}
	}
}

func TestOpenAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empire.log")
	if err := os.WriteFile(path, []byte("[2026-02-28 23:59:59] old entry\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	log, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	log.Printf("new entry")
	log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "old entry") || !strings.Contains(string(data), "new entry") {
		t.Fatalf("log must append, got %q", string(data))
	}
}
