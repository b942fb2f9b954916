package config

import (
	"os"

	errors "github.com/Laisky/errors/v2"
	"gopkg.in/yaml.v3"
)

// fileOverlay holds the subset of configuration an optional YAML file may
// set: the profile search directory list, which is awkward as a flat
// environment variable, plus a few operator-tunable scalars.
type fileOverlay struct {
	GinMode              *string  `yaml:"gin_mode"`
	SlicerBinary         *string  `yaml:"slicer_binary"`
	MaxConcurrentSlices  *int     `yaml:"max_concurrent_slices"`
	ProfileSearchDirs    []string `yaml:"profile_search_dirs"`
}

// ProfileSearchDirs lists extra directories the profile catalog consults
// before falling back to ConfigsDir, in priority order. Populated only by
// an optional CONFIG_FILE overlay; empty by default.
var ProfileSearchDirs []string

// ApplyFileOverlay reads the optional YAML file named by ConfigFile, if any,
// and overrides the scalar/slice configuration values it names. A missing
// file is not an error; CONFIG_FILE is opt-in.
func ApplyFileOverlay() error {
	if ConfigFile == "" {
		return nil
	}

	raw, err := os.ReadFile(ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "read config overlay file")
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return errors.Wrap(err, "parse config overlay file")
	}

	if overlay.GinMode != nil {
		GinMode = *overlay.GinMode
	}
	if overlay.SlicerBinary != nil {
		SlicerBinary = *overlay.SlicerBinary
	}
	if overlay.MaxConcurrentSlices != nil {
		MaxConcurrentSlices = *overlay.MaxConcurrentSlices
	}
	if len(overlay.ProfileSearchDirs) > 0 {
		ProfileSearchDirs = overlay.ProfileSearchDirs
	}

	return nil
}
