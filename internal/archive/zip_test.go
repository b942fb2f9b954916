package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtractHappyPath(t *testing.T) {
	archivePath := writeTestZip(t, map[string]string{"model.stl": "solid test"})
	dest := t.TempDir()

	extracted, err := Extract(archivePath, dest, Guard{MaxEntries: 10, MaxUncompressedBytes: 1 << 20})
	require.NoError(t, err)
	require.Len(t, extracted, 1)

	data, err := os.ReadFile(extracted[0])
	require.NoError(t, err)
	require.Equal(t, "solid test", string(data))
}

func TestExtractRejectsTooManyEntries(t *testing.T) {
	archivePath := writeTestZip(t, map[string]string{"a.stl": "x", "b.stl": "y"})
	dest := t.TempDir()

	_, err := Extract(archivePath, dest, Guard{MaxEntries: 1, MaxUncompressedBytes: 1 << 20})
	require.ErrorIs(t, err, ErrTooManyEntries)
}

func TestExtractRejectsTooLarge(t *testing.T) {
	archivePath := writeTestZip(t, map[string]string{"a.stl": "0123456789"})
	dest := t.TempDir()

	_, err := Extract(archivePath, dest, Guard{MaxEntries: 10, MaxUncompressedBytes: 5})
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	archivePath := writeTestZip(t, map[string]string{"../../etc/passwd": "pwned"})
	dest := t.TempDir()

	_, err := Extract(archivePath, dest, Guard{MaxEntries: 10, MaxUncompressedBytes: 1 << 20})
	require.ErrorIs(t, err, ErrPathTraversal)
}

func TestFirstSupportedEntryPicksFirstMatch(t *testing.T) {
	got := FirstSupportedEntry([]string{"/x/readme.txt", "/x/model.obj", "/x/model.stl"})
	require.Equal(t, "/x/model.obj", got)
}

func TestFirstSupportedEntryReturnsEmptyWhenNoneMatch(t *testing.T) {
	got := FirstSupportedEntry([]string{"/x/readme.txt"})
	require.Empty(t, got)
}
