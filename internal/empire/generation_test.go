package empire

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"beatempire/internal/store"
	"beatempire/pkg/domain"
	"beatempire/pkg/producer"
)

func TestGenerationSessionMarksBeatsReady(t *testing.T) {
	ms := store.NewMemoryStore()
	e := newTestEmpire(t, Config{Store: ms})

	if err := e.runGenerationSession(context.Background()); err != nil {
		t.Fatalf("session: %v", err)
	}

	ready, err := ms.ListBeats(domain.StatusReadyForUpload, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ready) != 3 {
		t.Fatalf("got %d ready beats, want 3", len(ready))
	}
	for _, b := range ready {
		if b.Genre == "" || b.Prompt == "" {
			t.Fatalf("beat missing genre or prompt: %+v", b)
		}
		if !strings.HasSuffix(b.Prompt, "professional production quality") {
			t.Fatalf("prompt missing quality tail: %q", b.Prompt)
		}
	}

	status, _ := ms.EmpireStatus()
	if status.DailyGenerated != 3 || status.LastGeneration == nil {
		t.Fatalf("generation not recorded: %+v", status)
	}
}

func TestGenerationSessionSkipsFailedBeats(t *testing.T) {
	ms := store.NewMemoryStore()
	e := newTestEmpire(t, Config{
		Store:    ms,
		Producer: &producer.Mock{FailEvery: 2},
	})

	// calls 2 fails, calls 1 and 3 succeed
	if err := e.runGenerationSession(context.Background()); err != nil {
		t.Fatalf("session must tolerate individual failures: %v", err)
	}

	ready, _ := ms.ListBeats(domain.StatusReadyForUpload, 0)
	if len(ready) != 2 {
		t.Fatalf("got %d ready beats, want 2", len(ready))
	}
	status, _ := ms.EmpireStatus()
	if status.DailyGenerated != 2 {
		t.Fatalf("daily generated: got %d, want 2", status.DailyGenerated)
	}
}

// frozenStatusStore rejects any post-insert status change, so a session must
// land beats in their final state in one write.
type frozenStatusStore struct {
	*store.MemoryStore
}

func (s *frozenStatusStore) SetBeatStatus(id string, _ domain.UploadStatus) error {
	return fmt.Errorf("unexpected status transition for beat %s", id)
}

func TestGenerationInsertsBeatsReadyInOneWrite(t *testing.T) {
	ms := store.NewMemoryStore()
	e := newTestEmpire(t, Config{Store: &frozenStatusStore{MemoryStore: ms}})

	if err := e.runGenerationSession(context.Background()); err != nil {
		t.Fatalf("session: %v", err)
	}

	ready, _ := ms.ListBeats(domain.StatusReadyForUpload, 0)
	if len(ready) != 3 {
		t.Fatalf("got %d ready beats, want 3", len(ready))
	}
	pending, _ := ms.ListBeats(domain.StatusPending, 0)
	if len(pending) != 0 {
		t.Fatalf("no beat may be stranded pending: %+v", pending)
	}
}

func TestSmartPromptMoodBuckets(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{6, "morning energy"},
		{12, "morning energy"},
		{13, "afternoon productivity"},
		{18, "afternoon productivity"},
		{19, "evening relaxation"},
		{22, "evening relaxation"},
		{23, "late night atmosphere"},
		{3, "late night atmosphere"},
	}
	for _, tc := range cases {
		e := newTestEmpire(t, Config{
			Now: func() time.Time {
				return time.Date(2026, 3, 1, tc.hour, 0, 0, 0, time.UTC)
			},
		})
		prompt := e.smartPrompt("Trap")
		if !strings.Contains(prompt, tc.want) {
			t.Fatalf("hour %d: prompt %q missing %q", tc.hour, prompt, tc.want)
		}
	}
}

func TestSmartPromptUnknownGenreBorrowsLoFiBank(t *testing.T) {
	e := newTestEmpire(t, Config{})
	prompt := e.smartPrompt("Synthwave")
	if !strings.Contains(strings.ToLower(prompt), "lo-fi") {
		t.Fatalf("unknown genre must borrow the lo-fi bank: %q", prompt)
	}
}
