// Package eventlog appends empire events to the shared plain-text log file.
// The line format `[timestamp] message` is read by the dashboard tooling and
// must not change; structured logging stays on slog.
package eventlog

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Log is an append-only, line-per-event log file.
type Log struct {
	mu  sync.Mutex
	f   *os.File
	now func() time.Time
}

// Open opens (or creates) the log file at path in append mode.
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &Log{f: f, now: time.Now}, nil
}

// Printf appends one timestamped event line.
func (l *Log) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("[%s] %s\n", l.now().Format(timeLayout), fmt.Sprintf(format, args...))
	_, _ = l.f.WriteString(line)
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
