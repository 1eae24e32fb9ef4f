package empire

import (
	"context"
	"testing"
	"time"

	"beatempire/internal/store"
	"beatempire/pkg/domain"
)

func TestDailyRollupAggregatesPerGenre(t *testing.T) {
	ms := store.NewMemoryStore()
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)

	save := func(id, genre string, status domain.UploadStatus, views int64, revenue, score float64, at time.Time) {
		t.Helper()
		if err := ms.SaveBeat(domain.Beat{
			ID: id, Genre: genre, Status: status,
			Views: views, Revenue: revenue, PerformanceScore: score,
			CreatedAt: at, UpdatedAt: at,
		}); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	save("t1", "Trap", domain.StatusUploaded, 100, 1.5, 80, now.Add(-5*time.Hour))
	save("t2", "Trap", domain.StatusUploaded, 300, 2.5, 120, now.Add(-3*time.Hour))
	save("t3", "Trap", domain.StatusReadyForUpload, 0, 0, 0, now.Add(-time.Hour))
	save("a1", "Ambient", domain.StatusUploaded, 50, 0.5, 40, now.Add(-2*time.Hour))
	// yesterday's beat must not appear in today's rollup
	save("old", "Trap", domain.StatusUploaded, 999, 9, 999, now.Add(-30*time.Hour))

	if err := ms.RecordGeneration(4, now); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	e := newTestEmpire(t, Config{Store: ms, Now: func() time.Time { return now }})
	if err := e.runDailyRollup(context.Background()); err != nil {
		t.Fatalf("rollup: %v", err)
	}

	stats, err := ms.ListDailyStats(10)
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d rollup rows, want 2", len(stats))
	}
	byGenre := map[string]domain.DailyStat{}
	for _, s := range stats {
		if s.Date != "2026-03-01" {
			t.Fatalf("wrong date on rollup row: %+v", s)
		}
		byGenre[s.Genre] = s
	}
	trap := byGenre["Trap"]
	if trap.Generated != 3 || trap.Uploaded != 2 || trap.Views != 400 || trap.Revenue != 4.0 {
		t.Fatalf("trap rollup wrong: %+v", trap)
	}
	if trap.BestPerformer != "t2" {
		t.Fatalf("best performer: got %s, want t2", trap.BestPerformer)
	}
	if trap.Notes["rotation"] == "" {
		t.Fatalf("rollup must note the active rotation")
	}

	status, _ := ms.EmpireStatus()
	if status.DailyGenerated != 0 || status.DailyUploaded != 0 || status.DailyRevenue != 0 {
		t.Fatalf("daily counters must reset after rollup: %+v", status)
	}
}

func TestDailyRollupWithNoBeats(t *testing.T) {
	ms := store.NewMemoryStore()
	e := newTestEmpire(t, Config{Store: ms})
	if err := e.runDailyRollup(context.Background()); err != nil {
		t.Fatalf("empty rollup must succeed: %v", err)
	}
	stats, _ := ms.ListDailyStats(10)
	if len(stats) != 0 {
		t.Fatalf("no rollup rows expected, got %d", len(stats))
	}
}
