package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empire_config.json")
	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.Generation.IntervalHours != 4 {
		t.Fatalf("interval_hours = %d, want 4", settings.Generation.IntervalHours)
	}
	if settings.Generation.RequestDelaySeconds != 30 {
		t.Fatalf("request_delay_seconds = %d, want 30", settings.Generation.RequestDelaySeconds)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults should be persisted: %v", err)
	}
}

func TestLoadSettingsBackfillsMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empire_config.json")
	partial := `{"generation_schedule":{"interval_hours":2,"beats_per_session":1,"genres_rotation":["Drill"],"request_delay_seconds":0}}`
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.Generation.IntervalHours != 2 {
		t.Fatalf("loaded value must win: interval_hours = %d, want 2", settings.Generation.IntervalHours)
	}
	if settings.Safety.MaxDailyUploads != 50 {
		t.Fatalf("missing safety section must be backfilled, got %d", settings.Safety.MaxDailyUploads)
	}
	if settings.Upload.StaggerMinutes != 30 {
		t.Fatalf("missing upload section must be backfilled, got %d", settings.Upload.StaggerMinutes)
	}

	// The merged document must be persisted back.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read merged settings: %v", err)
	}
	var onDisk map[string]json.RawMessage
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("parse merged settings: %v", err)
	}
	for _, key := range []string{"generation_schedule", "upload_schedule", "monetization", "optimization", "safety"} {
		if _, ok := onDisk[key]; !ok {
			t.Fatalf("persisted settings missing section %q", key)
		}
	}
}

func TestLoadSettingsNormalizesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empire_config.json")
	bad := `{"generation_schedule":{"interval_hours":-1,"beats_per_session":0,"genres_rotation":[]}}`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	settings, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if settings.Generation.IntervalHours != 4 || settings.Generation.BeatsPerSession != 3 {
		t.Fatalf("invalid generation values must fall back to defaults, got %+v", settings.Generation)
	}
	if len(settings.Generation.GenresRotation) == 0 {
		t.Fatalf("empty rotation must fall back to defaults")
	}
}

func TestSaveSettingsReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empire_config.json")
	settings := DefaultSettings()
	if err := SaveSettings(path, settings); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	settings.Generation.GenresRotation = []string{"Trap", "Drill"}
	if err := SaveSettings(path, settings); err != nil {
		t.Fatalf("resave settings: %v", err)
	}
	reloaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if len(reloaded.Generation.GenresRotation) != 2 || reloaded.Generation.GenresRotation[0] != "Trap" {
		t.Fatalf("rotation = %v, want [Trap Drill]", reloaded.Generation.GenresRotation)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files must not be left behind, dir has %d entries", len(entries))
	}
}
