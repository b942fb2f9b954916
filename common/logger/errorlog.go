package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
)

// ErrorEntry is one row of the rolling JSON error log. Client-caused
// rejections (invalid layer height, build-volume overflow, rate limiting,
// queue admission) never produce an ErrorEntry; only INTERNAL_PROCESSING_ERROR
// failures are recorded here.
type ErrorEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	Details   string    `json:"details,omitempty"`
	Path      string    `json:"path"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorLog is an append-only, age-pruned JSON log of internal processing
// failures, persisted at <LogDir>/log.json.
type ErrorLog struct {
	mu            sync.Mutex
	path          string
	retentionDays int
	now           func() time.Time
}

// NewErrorLog constructs an ErrorLog rooted at path, pruning entries older
// than retentionDays on every write. retentionDays <= 0 disables pruning.
func NewErrorLog(path string, retentionDays int) *ErrorLog {
	return &ErrorLog{path: path, retentionDays: retentionDays, now: time.Now}
}

// Record appends entry to the log file, creating it if absent, then prunes
// expired entries under the same lock so every write leaves the file in a
// consistent, retention-compliant state.
func (l *ErrorLog) Record(entry ErrorEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.readLocked()
	if err != nil {
		return errors.Wrap(err, "read error log")
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	entries = append(entries, entry)
	entries = pruneEntries(entries, l.retentionDays, l.now())

	return l.writeLocked(entries)
}

// Entries returns a copy of the currently retained error entries, newest
// last, for operator inspection or tests.
func (l *ErrorLog) Entries() ([]ErrorEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked()
}

// Prune removes entries older than the configured retention window without
// appending anything; intended to be called periodically from a background
// worker so the file shrinks even during idle periods.
func (l *ErrorLog) Prune() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.readLocked()
	if err != nil {
		return errors.Wrap(err, "read error log")
	}

	pruned := pruneEntries(entries, l.retentionDays, l.now())
	if len(pruned) == len(entries) {
		return nil
	}
	return l.writeLocked(pruned)
}

func (l *ErrorLog) readLocked() ([]ErrorEntry, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []ErrorEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// A corrupted log must never block request handling; start fresh.
		return nil, nil
	}
	return entries, nil
}

func (l *ErrorLog) writeLocked(entries []ErrorEntry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Wrap(err, "ensure log directory")
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal error log")
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write temp error log")
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return errors.Wrap(err, "rename error log into place")
	}
	return nil
}

func pruneEntries(entries []ErrorEntry, retentionDays int, now time.Time) []ErrorEntry {
	if retentionDays <= 0 {
		return entries
	}
	cutoff := now.UTC().AddDate(0, 0, -retentionDays)
	kept := entries[:0:0]
	for _, e := range entries {
		if e.Timestamp.UTC().Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// StartErrorLogRetentionWorker periodically prunes l using the same
// ticker/context lifecycle as StartLogRetentionCleaner, so an idle process
// still ages out old entries rather than only pruning on the next write.
func StartErrorLogRetentionWorker(ctx context.Context, l *ErrorLog) {
	workerLogger := Logger.With(zap.String("component", "error-log-retention"))
	ticker := time.NewTicker(24 * time.Hour)

	retentionWorkerGroup.Add(1)
	go func() {
		defer ticker.Stop()
		defer retentionWorkerGroup.Done()
		for {
			select {
			case <-ctx.Done():
				workerLogger.Info("error log retention worker stopped", zap.Error(ctx.Err()))
				return
			case <-ticker.C:
				if err := l.Prune(); err != nil {
					workerLogger.Warn("error log prune failed", zap.Error(err))
				}
			}
		}
	}()
}
