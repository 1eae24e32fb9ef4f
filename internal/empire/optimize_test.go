package empire

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"beatempire/internal/config"
	"beatempire/internal/store"
)

func TestOptimizationRewritesRotation(t *testing.T) {
	ms := store.NewMemoryStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedUploadedBeat(t, ms, "b1", "Deep House", 400, now.Add(-24*time.Hour))
	seedUploadedBeat(t, ms, "b2", "Ambient", 250, now.Add(-24*time.Hour))
	seedUploadedBeat(t, ms, "b3", "Trap", 10, now.Add(-24*time.Hour))

	settingsPath := filepath.Join(t.TempDir(), "empire_config.json")
	e := newTestEmpire(t, Config{
		Store:        ms,
		SettingsPath: settingsPath,
		Now:          func() time.Time { return now },
	})

	if err := e.runOptimization(context.Background()); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	want := []string{"Deep House", "Ambient", "Deep House", "Ambient"}
	if got := e.Settings().Generation.GenresRotation; !reflect.DeepEqual(got, want) {
		t.Fatalf("rotation: got %v, want %v", got, want)
	}

	// the optimized rotation must be persisted
	saved, err := config.LoadSettings(settingsPath)
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if !reflect.DeepEqual(saved.Generation.GenresRotation, want) {
		t.Fatalf("persisted rotation: got %v, want %v", saved.Generation.GenresRotation, want)
	}
}

func TestOptimizationWithoutDataUsesEvergreenPair(t *testing.T) {
	e := newTestEmpire(t, Config{})
	if err := e.runOptimization(context.Background()); err != nil {
		t.Fatalf("optimize: %v", err)
	}
	want := []string{"Lo-Fi Hip Hop", "Trap", "Lo-Fi Hip Hop", "Trap"}
	if got := e.Settings().Generation.GenresRotation; !reflect.DeepEqual(got, want) {
		t.Fatalf("rotation: got %v, want %v", got, want)
	}
}

func TestOptimizationRespectsAutoAdjustFlag(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Optimization.AutoAdjustGenres = false
	e := newTestEmpire(t, Config{Settings: settings})

	before := e.Settings().Generation.GenresRotation
	if err := e.runOptimization(context.Background()); err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if got := e.Settings().Generation.GenresRotation; !reflect.DeepEqual(got, before) {
		t.Fatalf("rotation must stay untouched when auto-adjust is off")
	}
}
