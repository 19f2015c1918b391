// Package scratch manages the working directory for downloaded and
// processed audio. Files are named with UUIDs to avoid collisions and a
// janitor removes anything older than the configured age, so crashes
// mid-pipeline cannot fill the disk.
package scratch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	coreconfig "github.com/m3rciful/audiobot/core/config"
	"github.com/m3rciful/audiobot/core/logger"

	"github.com/google/uuid"
)

// Dir is a managed scratch directory.
type Dir struct {
	root          string
	maxAge        time.Duration
	sweepInterval time.Duration
}

// New ensures the directory exists and returns a managed handle.
func New(cfg coreconfig.StorageConfig) (*Dir, error) {
	root := cfg.TempDir
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("scratch: create %s: %w", root, err)
	}

	maxAge := time.Duration(cfg.MaxAgeMinutes) * time.Minute
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	sweep := time.Duration(cfg.SweepIntervalMinutes) * time.Minute
	if sweep <= 0 {
		sweep = 10 * time.Minute
	}

	return &Dir{root: root, maxAge: maxAge, sweepInterval: sweep}, nil
}

// Root returns the scratch directory path.
func (d *Dir) Root() string { return d.root }

// NewPath returns a unique file path inside the scratch directory with the
// given extension (".flac", ".ogg", ...).
func (d *Dir) NewPath(ext string) string {
	return filepath.Join(d.root, uuid.NewString()+ext)
}

// Run sweeps the directory until the context is cancelled.
func (d *Dir) Run(ctx context.Context) {
	ticker := time.NewTicker(d.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := d.Sweep(time.Now())
			if err != nil {
				logger.Warn(ctx, "scratch", "sweep.fail",
					slog.String("err", err.Error()),
				)
				continue
			}
			if removed > 0 {
				logger.Info(ctx, "scratch", "sweep.done",
					slog.Int("removed", removed),
				)
			}
		}
	}
}

// Sweep removes regular files older than the max age and reports how many
// were deleted. Subdirectories are left alone.
func (d *Dir) Sweep(now time.Time) (int, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return 0, fmt.Errorf("scratch: read %s: %w", d.root, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= d.maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(d.root, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
