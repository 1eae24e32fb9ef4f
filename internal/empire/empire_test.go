package empire

import (
	"math/rand"
	"testing"
	"time"

	"beatempire/internal/config"
	"beatempire/internal/store"
	"beatempire/pkg/producer"
	"beatempire/pkg/publisher"
)

// newTestEmpire builds an empire on in-memory collaborators with all delays
// zeroed and a deterministic clock and rng.
func newTestEmpire(t *testing.T, cfg Config) *Empire {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	if cfg.Producer == nil {
		cfg.Producer = &producer.Mock{}
	}
	if cfg.Publisher == nil {
		cfg.Publisher = &publisher.Mock{}
	}
	if cfg.Settings.Generation.BeatsPerSession == 0 {
		cfg.Settings = config.DefaultSettings()
	}
	cfg.Settings.Generation.RequestDelaySeconds = 0
	cfg.Settings.Upload.StaggerMinutes = 0
	if cfg.Now == nil {
		cfg.Now = func() time.Time {
			return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 5 * time.Millisecond
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("new empire: %v", err)
	}
	return e
}

func TestStartStopLifecycle(t *testing.T) {
	e := newTestEmpire(t, Config{})
	if e.State() != StateStopped {
		t.Fatalf("fresh empire must be stopped, got %s", e.State())
	}

	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if e.State() != StateRunning {
		t.Fatalf("after start: got %s, want running", e.State())
	}
	status, err := e.cfg.Store.EmpireStatus()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Running {
		t.Fatalf("running flag must be persisted")
	}

	if err := e.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if e.State() != StateStopped {
		t.Fatalf("after stop: got %s, want stopped", e.State())
	}
	status, _ = e.cfg.Store.EmpireStatus()
	if status.Running {
		t.Fatalf("running flag must be cleared on stop")
	}
}

func TestDoubleStartIsNoOp(t *testing.T) {
	e := newTestEmpire(t, Config{})
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer e.Stop()

	firstDone := e.done
	if err := e.Start(); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if e.done != firstDone {
		t.Fatalf("second start must not replace the running loop")
	}
	if e.State() != StateRunning {
		t.Fatalf("got %s, want running", e.State())
	}
}

func TestStopWhenStoppedIsNoOp(t *testing.T) {
	e := newTestEmpire(t, Config{})
	if err := e.Stop(); err != nil {
		t.Fatalf("stop on stopped empire: %v", err)
	}
}

func TestRestartRebuildsJobs(t *testing.T) {
	e := newTestEmpire(t, Config{})
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if e.jobs != nil {
		t.Fatalf("stop must clear the job table")
	}
	if err := e.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer e.Stop()
	if len(e.jobs) != 5 {
		t.Fatalf("restart must rebuild jobs, got %d", len(e.jobs))
	}
}

func TestStartRunsImmediateGeneration(t *testing.T) {
	ms := store.NewMemoryStore()
	e := newTestEmpire(t, Config{Store: ms})
	if err := e.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	e.wg.Wait()
	e.Stop()

	beats, err := ms.ListBeats("", 0)
	if err != nil {
		t.Fatalf("list beats: %v", err)
	}
	if len(beats) != 3 {
		t.Fatalf("startup session must generate beats_per_session beats, got %d", len(beats))
	}
}

func TestSnapshotReflectsStore(t *testing.T) {
	ms := store.NewMemoryStore()
	e := newTestEmpire(t, Config{Store: ms})
	if err := SeedChannels(ms, "", e.now()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snap, err := e.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State != "stopped" {
		t.Fatalf("state: got %s", snap.State)
	}
	if snap.ActiveChannels != 5 {
		t.Fatalf("active channels: got %d, want 5", snap.ActiveChannels)
	}
}
