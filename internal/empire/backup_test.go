package empire

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBackupCopiesDatabaseAndSettings(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "autonomous_empire.db")
	settingsPath := filepath.Join(dir, "empire_config.json")
	if err := os.WriteFile(dbPath, []byte("db bytes"), 0o644); err != nil {
		t.Fatalf("seed db: %v", err)
	}
	if err := os.WriteFile(settingsPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	backupDir := filepath.Join(dir, "backups")
	now := time.Date(2026, 3, 15, 4, 30, 0, 0, time.UTC)
	e := newTestEmpire(t, Config{
		DBPath:       dbPath,
		SettingsPath: settingsPath,
		BackupDir:    backupDir,
		Now:          func() time.Time { return now },
	})

	if err := e.runBackup(context.Background()); err != nil {
		t.Fatalf("backup: %v", err)
	}

	monthDir := filepath.Join(backupDir, "2026-03")
	entries, err := os.ReadDir(monthDir)
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d backup files, want 2", len(entries))
	}
	data, err := os.ReadFile(filepath.Join(monthDir, "empire_backup_20260315_043000.db"))
	if err != nil || string(data) != "db bytes" {
		t.Fatalf("db backup wrong: %q err %v", data, err)
	}
}

func TestBackupSkipsMissingSources(t *testing.T) {
	dir := t.TempDir()
	e := newTestEmpire(t, Config{
		DBPath:       filepath.Join(dir, "missing.db"),
		SettingsPath: filepath.Join(dir, "missing.json"),
		BackupDir:    filepath.Join(dir, "backups"),
	})
	if err := e.runBackup(context.Background()); err != nil {
		t.Fatalf("backup with missing sources must not error: %v", err)
	}
}
