package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/audiobot/core/config"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	d, err := New(coreconfig.StorageConfig{
		TempDir:              t.TempDir(),
		MaxAgeMinutes:        60,
		SweepIntervalMinutes: 10,
	})
	require.NoError(t, err)
	return d
}

func TestNewPathUnique(t *testing.T) {
	d := newTestDir(t)

	a := d.NewPath(".flac")
	b := d.NewPath(".flac")
	require.NotEqual(t, a, b)
	require.True(t, strings.HasSuffix(a, ".flac"))
	require.Equal(t, d.Root(), filepath.Dir(a))
}

func TestSweepRemovesOldFiles(t *testing.T) {
	d := newTestDir(t)

	oldFile := d.NewPath(".ogg")
	freshFile := d.NewPath(".ogg")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, stale, stale))

	removed, err := d.Sweep(time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	_, err = os.Stat(oldFile)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshFile)
	require.NoError(t, err)
}

func TestSweepKeepsDirectories(t *testing.T) {
	d := newTestDir(t)

	sub := filepath.Join(d.Root(), "keep")
	require.NoError(t, os.Mkdir(sub, 0o755))
	stale := time.Now().Add(-3 * time.Hour)
	require.NoError(t, os.Chtimes(sub, stale, stale))

	removed, err := d.Sweep(time.Now())
	require.NoError(t, err)
	require.Zero(t, removed)

	_, err = os.Stat(sub)
	require.NoError(t, err)
}

func TestSweepBoundary(t *testing.T) {
	d := newTestDir(t)

	f := d.NewPath(".mp3")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	// Exactly at the max age must survive; only strictly older files go.
	at := time.Now().Add(-60 * time.Minute)
	require.NoError(t, os.Chtimes(f, at, at))

	removed, err := d.Sweep(at.Add(60 * time.Minute))
	require.NoError(t, err)
	require.Zero(t, removed)
}
