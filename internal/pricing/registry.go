// Package pricing implements the JSON-file-backed hourly rate table that the
// estimator consumes: load/get_all/create/update/delete/rate_for plus a
// fsnotify-driven hot reload, persisted with the teacher's temp-file+rename
// atomicity discipline.
package pricing

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/domain"
)

// defaultRatesHUF seeds the registry on first start (and backfills any
// technology missing from a malformed or partial persisted file).
var defaultRatesHUF = map[domain.Technology]map[string]int{
	domain.FDM: {"default": 800, "PLA": 800, "PETG": 900, "ABS": 950},
	domain.SLA: {"default": 1500, "Standard": 1800, "Tough": 2200},
}

// Snapshot is a deep, read-only copy of the registry's current rates.
type Snapshot map[domain.Technology]map[string]int

// Registry is the in-memory pricing map backed by a JSON file on disk.
// Mutations are serialized by mu (single-writer discipline). Load replaces
// rates wholesale, while Create/Update/Delete edit it in place under the
// write lock; readers receive deep copies from GetAll, so a Snapshot they
// hold is never affected by later changes.
type Registry struct {
	mu   sync.RWMutex
	path string
	rates Snapshot

	readGroup singleflight.Group
}

// New constructs a Registry rooted at path without touching the filesystem;
// call Load to populate it.
func New(path string) *Registry {
	return &Registry{path: path, rates: cloneDefaults()}
}

func cloneDefaults() Snapshot {
	out := make(Snapshot, len(defaultRatesHUF))
	for tech, materials := range defaultRatesHUF {
		m := make(map[string]int, len(materials))
		for k, v := range materials {
			m[k] = v
		}
		out[tech] = m
	}
	return out
}

// persistedForm is the on-disk JSON shape: technology -> material -> rate.
type persistedForm map[string]map[string]int

// Load reads the pricing file, merging it over the compiled-in defaults so
// unknown technologies are ignored and missing defaults are backfilled. If
// the file is absent it is initialized from defaults and persisted. A parse
// failure logs and falls back to defaults, then re-persists.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrap(err, "read pricing file")
		}
		r.rates = cloneDefaults()
		return r.persistLocked()
	}

	var parsed persistedForm
	if jsonErr := json.Unmarshal(raw, &parsed); jsonErr != nil {
		logger.Logger.Warn("pricing file failed to parse, falling back to defaults",
			zap.String("path", r.path), zap.Error(jsonErr))
		r.rates = cloneDefaults()
		return r.persistLocked()
	}

	merged := cloneDefaults()
	for techRaw, materials := range parsed {
		tech, ok := domain.Canonicalize(techRaw)
		if !ok {
			continue // unknown technologies are ignored
		}
		for material, rate := range materials {
			if !validRate(rate) {
				continue
			}
			merged[tech][material] = rate
		}
	}
	r.rates = merged

	return nil
}

func validRate(rate int) bool {
	return rate > 0 && !math.IsInf(float64(rate), 0)
}

// GetAll returns a deep copy of the full pricing map.
func (r *Registry) GetAll() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSnapshot(r.rates)
}

func cloneSnapshot(s Snapshot) Snapshot {
	out := make(Snapshot, len(s))
	for tech, materials := range s {
		m := make(map[string]int, len(materials))
		for k, v := range materials {
			m[k] = v
		}
		out[tech] = m
	}
	return out
}

// GetAllCached returns GetAll's result but collapses concurrent calls
// arriving within the same read cycle into a single snapshot copy, mirroring
// the teacher's singleflight-guarded anonymous model listing.
func (r *Registry) GetAllCached() (Snapshot, error) {
	v, err, _ := r.readGroup.Do("snapshot", func() (any, error) {
		return r.GetAll(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Snapshot), nil
}

// ErrDuplicateMaterial is returned by Create when the material already exists
// (case-insensitively) for the technology.
var ErrDuplicateMaterial = errors.New("material already exists")

// ErrMaterialNotFound is returned by Update/Delete lookups that miss.
var ErrMaterialNotFound = errors.New("material not found")

// ErrDefaultUndeletable is returned when Delete targets the literal "default" key.
var ErrDefaultUndeletable = errors.New("the default material cannot be deleted")

// ErrInvalidRate is returned when a caller supplies a non-finite or
// non-positive price.
var ErrInvalidRate = errors.New("price must be a finite, positive number")

// Create adds a new material at the given price, rejecting a case-insensitive
// duplicate. Returns the canonical stored key.
func (r *Registry) Create(tech domain.Technology, material string, price int) (string, error) {
	if !validRate(price) {
		return "", ErrInvalidRate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	materials := r.rates[tech]
	if materials == nil {
		materials = make(map[string]int)
		r.rates[tech] = materials
	}

	if existing, ok := findCaseInsensitive(materials, material); ok {
		return "", errors.Wrapf(ErrDuplicateMaterial, "material %q", existing)
	}

	materials[material] = price
	if err := r.persistLocked(); err != nil {
		delete(materials, material)
		return "", err
	}

	return material, nil
}

// Update creates the material if absent, otherwise updates the existing
// canonical key in place (preserving its original spelling).
func (r *Registry) Update(tech domain.Technology, material string, price int) (string, error) {
	if !validRate(price) {
		return "", ErrInvalidRate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	materials := r.rates[tech]
	if materials == nil {
		materials = make(map[string]int)
		r.rates[tech] = materials
	}

	key := material
	previous, hadPrevious := 0, false
	if existing, ok := findCaseInsensitive(materials, material); ok {
		key = existing
		previous, hadPrevious = materials[existing], true
	}

	materials[key] = price
	if err := r.persistLocked(); err != nil {
		if hadPrevious {
			materials[key] = previous
		} else {
			delete(materials, key)
		}
		return "", err
	}

	return key, nil
}

// Delete removes material from tech's map. Deleting "default"
// (case-insensitive) is rejected to preserve legacy fallback semantics.
func (r *Registry) Delete(tech domain.Technology, material string) error {
	if strings.EqualFold(material, "default") {
		return ErrDefaultUndeletable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	materials := r.rates[tech]
	existing, ok := findCaseInsensitive(materials, material)
	if !ok {
		return ErrMaterialNotFound
	}

	price := materials[existing]
	delete(materials, existing)
	if err := r.persistLocked(); err != nil {
		materials[existing] = price
		return err
	}

	return nil
}

// RateFor resolves the hourly rate for (tech, material): exact
// case-insensitive match first, then a finite positive rate of the
// technology, then a finite positive compiled-in default, then 0. The
// fallbacks range over Go maps, so when several rates qualify, which one is
// returned is not defined and may differ between calls.
func (r *Registry) RateFor(tech domain.Technology, material string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materials := r.rates[tech]
	if rate, ok := findCaseInsensitiveRate(materials, material); ok {
		return rate
	}
	for _, rate := range materials {
		if validRate(rate) {
			return rate
		}
	}
	for _, rate := range defaultRatesHUF[tech] {
		if validRate(rate) {
			return rate
		}
	}
	return 0
}

func findCaseInsensitive(materials map[string]int, material string) (string, bool) {
	for k := range materials {
		if strings.EqualFold(k, material) {
			return k, true
		}
	}
	return "", false
}

func findCaseInsensitiveRate(materials map[string]int, material string) (int, bool) {
	for k, v := range materials {
		if strings.EqualFold(k, material) {
			return v, true
		}
	}
	return 0, false
}

// persistLocked writes the current rates to a sibling temp file and renames
// it over r.path so a crash mid-write cannot corrupt the registry. Callers
// must hold r.mu.
func (r *Registry) persistLocked() error {
	out := make(persistedForm, len(r.rates))
	for tech, materials := range r.rates {
		m := make(map[string]int, len(materials))
		for k, v := range materials {
			m[k] = v
		}
		out[string(tech)] = m
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal pricing file")
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrap(err, "ensure pricing directory")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write temp pricing file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "rename pricing file into place")
	}

	return nil
}

// Watch starts an fsnotify watcher on the pricing file's directory and
// re-invokes Load under the write lock whenever the file is written,
// picking up operator hand-edits without a restart. It returns once the
// watcher is established; the watch loop runs until ctx is canceled.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create pricing watcher")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = watcher.Close()
		return errors.Wrap(err, "ensure pricing directory")
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return errors.Wrap(err, "watch pricing directory")
	}

	watchLogger := logger.Logger.With(zap.String("component", "pricing-watcher"))

	go func() {
		defer watcher.Close()
		target := filepath.Clean(r.path)
		for {
			select {
			case <-ctx.Done():
				watchLogger.Info("pricing watcher stopped", zap.Error(ctx.Err()))
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := r.Load(); err != nil {
					watchLogger.Warn("pricing hot reload failed", zap.Error(err))
					continue
				}
				watchLogger.Info("pricing file hot-reloaded", zap.String("path", r.path))
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				watchLogger.Warn("pricing watcher error", zap.Error(watchErr))
			}
		}
	}()

	return nil
}
