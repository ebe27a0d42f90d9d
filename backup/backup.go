// Package backup takes daily snapshots of the stored collections and uploaded
// images, keeping a fixed number of days.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/junaidrashid-git/swiftcart-api/config"
	"github.com/junaidrashid-git/swiftcart-api/store"
	"go.uber.org/zap"
)

const stampLayout = "2006-01-02_15-04-05"

type Job struct {
	cfg       config.BackupConfig
	store     store.Store
	keys      []string
	uploadDir string
	now       func() time.Time
	log       *zap.Logger
}

func NewJob(cfg config.BackupConfig, st store.Store, keys []string, uploadDir string, log *zap.Logger) *Job {
	return &Job{cfg: cfg, store: st, keys: keys, uploadDir: uploadDir, now: time.Now, log: log.With(zap.String("job", "backup"))}
}

// Run backs up once a day at the configured time until ctx is done.
func (j *Job) Run(ctx context.Context) {
	for {
		next := nextRun(j.now(), j.cfg.Hour, j.cfg.Minute)
		j.log.Info("next backup scheduled", zap.Time("at", next))

		timer := time.NewTimer(next.Sub(j.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		dest, err := j.RunOnce(ctx)
		if err != nil {
			j.log.Error("backup failed", zap.Error(err))
		} else {
			j.log.Info("backup written", zap.String("dir", dest))
		}
		j.cleanup()
	}
}

func nextRun(now time.Time, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce writes one snapshot folder and returns its path.
func (j *Job) RunOnce(ctx context.Context) (string, error) {
	dest := filepath.Join(j.cfg.Dir, j.now().Format(stampLayout))
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}

	for _, key := range j.keys {
		entry, err := j.store.Get(ctx, key)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", key, err)
		}
		if !entry.Exists() {
			continue
		}
		if err := os.WriteFile(filepath.Join(dest, key+".json"), entry.Value, 0o644); err != nil {
			return "", err
		}
	}

	if j.uploadDir != "" {
		if _, err := os.Stat(j.uploadDir); err == nil {
			if err := copyDir(j.uploadDir, filepath.Join(dest, "uploads")); err != nil {
				return "", fmt.Errorf("copy uploads: %w", err)
			}
		}
	}
	return dest, nil
}

// cleanup removes snapshot folders older than the retention period.
func (j *Job) cleanup() {
	entries, err := os.ReadDir(j.cfg.Dir)
	if err != nil {
		j.log.Error("failed to read backup directory", zap.Error(err))
		return
	}

	cutoff := j.now().Add(-j.cfg.Retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		taken, err := time.ParseInLocation(stampLayout, entry.Name(), j.now().Location())
		if err != nil || !taken.Before(cutoff) {
			continue
		}
		folderPath := filepath.Join(j.cfg.Dir, entry.Name())
		if err := os.RemoveAll(folderPath); err != nil {
			j.log.Error("failed to remove old backup", zap.String("dir", folderPath), zap.Error(err))
		} else {
			j.log.Info("removed old backup", zap.String("dir", folderPath))
		}
	}
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			err = copyDir(srcPath, destPath)
		} else {
			err = copyFile(srcPath, destPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
