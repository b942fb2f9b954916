package logger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestErrorLogRecordAndEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	l := NewErrorLog(path, 7)

	require.NoError(t, l.Record(ErrorEntry{Error: "slicer crash", Path: "/slice/FDM", RequestID: "req-1"}))
	require.NoError(t, l.Record(ErrorEntry{Error: "profile missing", Path: "/slice/SLA", RequestID: "req-2"}))

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "slicer crash", entries[0].Error)
	require.Equal(t, "profile missing", entries[1].Error)
	require.False(t, entries[0].Timestamp.IsZero())
}

func TestErrorLogPruneDropsExpiredEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	l := NewErrorLog(path, 7)

	old := time.Now().Add(-10 * 24 * time.Hour)
	recent := time.Now().Add(-1 * time.Hour)

	require.NoError(t, l.Record(ErrorEntry{Error: "old", Path: "/x", Timestamp: old}))
	require.NoError(t, l.Record(ErrorEntry{Error: "recent", Path: "/y", Timestamp: recent}))

	require.NoError(t, l.Prune())

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "recent", entries[0].Error)
}

func TestErrorLogZeroRetentionDisablesPruning(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	l := NewErrorLog(path, 0)

	old := time.Now().Add(-365 * 24 * time.Hour)
	require.NoError(t, l.Record(ErrorEntry{Error: "ancient", Path: "/z", Timestamp: old}))
	require.NoError(t, l.Prune())

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestErrorLogEntriesOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	l := NewErrorLog(filepath.Join(dir, "missing.json"), 7)
	entries, err := l.Entries()
	require.NoError(t, err)
	require.Empty(t, entries)
}
