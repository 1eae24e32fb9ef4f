// Package quota enforces per-day upload caps. Keys are logical scopes such as
// "empire" for the global cap or "channel:<name>" for per-account caps.
package quota

import (
	"context"
	"sync"
	"time"
)

// Quota grants or denies one unit against a daily cap. Implementations must
// reset automatically at the day boundary.
type Quota interface {
	// Allow consumes one unit for key and reports whether the cap still
	// permitted it. A denied call consumes nothing.
	Allow(ctx context.Context, key string) (bool, error)
	// Check reports whether key has budget left without consuming any.
	Check(ctx context.Context, key string) (bool, error)
}

// Memory is an in-process day-window quota.
type Memory struct {
	limit int
	now   func() time.Time

	mu     sync.Mutex
	day    string
	counts map[string]int
}

// NewMemory returns a quota allowing limit units per key per calendar day.
// A limit of zero or less disables the cap.
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit, now: time.Now, counts: make(map[string]int)}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if m.limit <= 0 {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count(key) >= m.limit {
		return false, nil
	}
	m.counts[key]++
	return true, nil
}

func (m *Memory) Check(_ context.Context, key string) (bool, error) {
	if m.limit <= 0 {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count(key) < m.limit, nil
}

// count returns the current tally for key, rolling the window at day change.
// Callers must hold mu.
func (m *Memory) count(key string) int {
	day := m.now().UTC().Format("2006-01-02")
	if day != m.day {
		m.day = day
		m.counts = make(map[string]int)
	}
	return m.counts[key]
}
