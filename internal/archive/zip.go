// Package archive safely extracts uploaded zip archives: it rejects
// encrypted entries, enforces entry-count and cumulative-uncompressed-size
// ceilings before extraction begins, and canonicalizes every entry path to
// guard against directory traversal. No third-party zip library appears
// anywhere in the examples pack, so this package is stdlib-by-necessity
// (archive/zip); see DESIGN.md.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

// ErrEncrypted is returned when any entry in the archive is encrypted.
var ErrEncrypted = errors.New("archive contains an encrypted entry")

// ErrTooManyEntries is returned when the archive exceeds the configured
// entry-count ceiling.
var ErrTooManyEntries = errors.New("archive exceeds the maximum entry count")

// ErrTooLarge is returned when the archive's cumulative uncompressed size
// exceeds the configured ceiling.
var ErrTooLarge = errors.New("archive exceeds the maximum uncompressed size")

// ErrPathTraversal is returned when an entry's resolved path escapes the
// extraction directory.
var ErrPathTraversal = errors.New("archive entry resolves outside the extraction directory")

// Guard bounds the resources an extraction is allowed to consume.
type Guard struct {
	MaxEntries            int
	MaxUncompressedBytes  int64
}

// Extract validates archivePath against guard and extracts every entry into
// destDir (which must already exist), returning the extracted file paths in
// archive order. It rejects before extracting anything if the entry count or
// cumulative uncompressed size exceeds guard's limits, or if any entry is
// encrypted. An entry that would traverse outside destDir is rejected when
// extraction reaches it, before its file is opened; entries earlier in the
// archive may already have been written into destDir by then.
func Extract(archivePath, destDir string, guard Guard) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Wrap(err, "open zip archive")
	}
	defer r.Close()

	if len(r.File) > guard.MaxEntries {
		return nil, ErrTooManyEntries
	}

	var totalUncompressed int64
	for _, f := range r.File {
		if f.IsEncrypted() {
			return nil, ErrEncrypted
		}
		totalUncompressed += int64(f.UncompressedSize64)
		if totalUncompressed > guard.MaxUncompressedBytes {
			return nil, ErrTooLarge
		}
	}

	cleanDest, err := filepath.Abs(filepath.Clean(destDir))
	if err != nil {
		return nil, errors.Wrap(err, "resolve extraction directory")
	}

	extracted := make([]string, 0, len(r.File))
	for _, f := range r.File {
		target, err := resolveEntryPath(cleanDest, f.Name)
		if err != nil {
			return nil, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, errors.Wrap(err, "create archive directory")
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, errors.Wrap(err, "create archive entry parent directory")
		}

		if err := extractEntry(f, target); err != nil {
			return nil, err
		}

		extracted = append(extracted, target)
	}

	return extracted, nil
}

// resolveEntryPath canonicalizes name against destDir and verifies the
// result stays strictly within destDir.
func resolveEntryPath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || cleaned == ".." {
		return "", ErrPathTraversal
	}

	target := filepath.Join(destDir, cleaned)
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return target, nil
}

func extractEntry(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return errors.Wrap(err, "open archive entry")
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "create extracted file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrap(err, "write extracted file")
	}

	return nil
}

// SupportedExtensions lists every extension the conversion pipeline can
// dispatch on, used to select the first matching entry inside an archive.
var SupportedExtensions = map[string]bool{
	".stl": true,
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true,
	".dxf": true, ".svg": true, ".eps": true, ".pdf": true,
	".obj": true, ".3mf": true, ".ply": true,
	".stp": true, ".step": true, ".igs": true, ".iges": true,
}

// FirstSupportedEntry returns the first path in extracted whose extension is
// in SupportedExtensions, or "" if none match.
func FirstSupportedEntry(extracted []string) string {
	for _, path := range extracted {
		ext := strings.ToLower(filepath.Ext(path))
		if SupportedExtensions[ext] {
			return path
		}
	}
	return ""
}
