package empire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// runBackup copies the database and settings into a dated backup directory
// and mirrors the copies to object storage when configured.
func (e *Empire) runBackup(ctx context.Context) error {
	if e.cfg.BackupDir == "" {
		return nil
	}
	now := e.now()
	dir := filepath.Join(e.cfg.BackupDir, now.Format("2006-01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	stamp := now.Format("20060102_150405")

	targets := []struct{ src, dst string }{
		{e.cfg.DBPath, filepath.Join(dir, "empire_backup_"+stamp+".db")},
		{e.cfg.SettingsPath, filepath.Join(dir, "config_backup_"+stamp+".json")},
	}
	for _, t := range targets {
		if t.src == "" {
			continue
		}
		if err := copyFile(t.src, t.dst); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("backup %s: %w", filepath.Base(t.src), err)
		}
		if e.cfg.Archive != nil {
			if err := e.mirrorBackup(ctx, t.dst); err != nil {
				e.logger.Warn("mirror backup", "file", filepath.Base(t.dst), "err", err)
			}
		}
	}

	e.cfg.Events.Printf("system backup completed: %s", dir)
	return nil
}

func (e *Empire) mirrorBackup(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	key := "backups/" + e.now().Format("2006-01") + "/" + filepath.Base(path)
	return e.cfg.Archive.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/octet-stream")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
