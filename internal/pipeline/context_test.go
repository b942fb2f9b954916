package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanupRemovesAllTrackedPaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.tmp")
	subdir := filepath.Join(dir, "sub")

	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(subdir, 0o755))

	rec := &Context{}
	rec.Track(file)
	rec.Track(subdir)
	rec.Cleanup()

	_, err := os.Stat(file)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(subdir)
	require.True(t, os.IsNotExist(err))
}

func TestCleanupToleratesMissingPaths(t *testing.T) {
	rec := &Context{}
	rec.Track(filepath.Join(t.TempDir(), "never-existed"))
	require.NotPanics(t, func() { rec.Cleanup() })
}
