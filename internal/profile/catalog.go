// Package profile locates and validates the per-(technology, layer height)
// slicer profile files under CONFIGS_DIR, using go-ini/ini (grounded on the
// storj-storj example's dependency on the same library) to confirm a
// profile actually parses before the slicer subprocess is invoked, turning a
// malformed profile into a clear INTERNAL_PROCESSING_ERROR log entry instead
// of an opaque slicer crash.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/go-ini/ini"

	"github.com/slicehub/slicehub/internal/domain"
)

// ErrProfileMissing is returned when the profile file for (tech, layerHeight)
// does not exist.
var ErrProfileMissing = errors.New("slicer profile file is missing")

// ErrProfileInvalid is returned when the profile file exists but does not
// parse as ini.
var ErrProfileInvalid = errors.New("slicer profile file does not parse as ini")

// Catalog resolves and validates slicer profile files rooted at a configs
// directory, optionally consulting extra search directories first (an
// operator-maintained override path, populated from the optional YAML
// config overlay) before falling back to configsDir.
type Catalog struct {
	configsDir string
	searchDirs []string
}

// New builds a Catalog rooted at configsDir, consulting searchDirs (in
// order) before configsDir when resolving a profile.
func New(configsDir string, searchDirs ...string) *Catalog {
	return &Catalog{configsDir: configsDir, searchDirs: searchDirs}
}

// Path computes the profile path for (tech, layerHeightMM) under configsDir,
// e.g. "configs/FDM_0.2mm.ini".
func (c *Catalog) Path(tech domain.Technology, layerHeightMM float64) string {
	return filepath.Join(c.configsDir, c.filename(tech, layerHeightMM))
}

func (c *Catalog) filename(tech domain.Technology, layerHeightMM float64) string {
	return fmt.Sprintf("%s_%smm.ini", tech, formatLayerHeight(layerHeightMM))
}

func formatLayerHeight(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return strings.TrimSuffix(strings.TrimSuffix(s, "0"), ".")
}

// Resolve locates and validates the profile file for (tech, layerHeightMM).
// It returns ErrProfileMissing if absent from every search location and
// ErrProfileInvalid if found but unparseable; both map to a 500
// INTERNAL_PROCESSING_ERROR at the HTTP layer, consistent with spec §4.4
// step 7 ("missing file is a server error") generalized to cover corruption
// as well as absence.
func (c *Catalog) Resolve(tech domain.Technology, layerHeightMM float64) (string, error) {
	name := c.filename(tech, layerHeightMM)

	candidates := make([]string, 0, len(c.searchDirs)+1)
	for _, dir := range c.searchDirs {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	candidates = append(candidates, filepath.Join(c.configsDir, name))

	var path string
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		return "", errors.Wrapf(ErrProfileMissing, "%s", name)
	}

	if _, err := ini.Load(path); err != nil {
		return "", errors.Wrapf(ErrProfileInvalid, "%s: %v", path, err)
	}

	return path, nil
}
