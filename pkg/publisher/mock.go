package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Mock records uploads in memory and fabricates video ids.
type Mock struct {
	// Fail makes every call fail when set; used by tests.
	Fail bool
	// FailFirst fails this many leading calls, then recovers.
	FailFirst int

	mu       sync.Mutex
	Uploads  []Request
	calls    int
	sequence int
}

func (m *Mock) Publish(_ context.Context, req Request) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Fail || m.calls <= m.FailFirst {
		return Result{}, fmt.Errorf("mock publisher failure")
	}
	m.sequence++
	m.Uploads = append(m.Uploads, req)
	id := fmt.Sprintf("mock_vid_%d_%d", time.Now().Unix(), m.sequence)
	return Result{VideoID: id, URL: "https://youtube.com/watch?v=" + id}, nil
}
