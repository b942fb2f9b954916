package pipeline

import (
	"context"
	"regexp"
	"strconv"

	errors "github.com/Laisky/errors/v2"

	"github.com/slicehub/slicehub/common/config"
	"github.com/slicehub/slicehub/internal/domain"
	"github.com/slicehub/slicehub/internal/subprocess"
)

var (
	sizeXPattern = regexp.MustCompile(`size_x\s*[:=]\s*([\d.]+)`)
	sizeYPattern = regexp.MustCompile(`size_y\s*[:=]\s*([\d.]+)`)
	sizeZPattern = regexp.MustCompile(`size_z\s*[:=]\s*([\d.]+)`)
)

// Dimensions is the measured bounding box of a mesh, in millimeters.
type Dimensions struct {
	X, Y, Z float64
}

// Measure invokes the slicer in info mode against meshPath and parses
// size_x/size_y/size_z from its output; a missing value is treated as 0.
func Measure(ctx context.Context, runner *subprocess.Runner, meshPath string) (Dimensions, error) {
	result, err := runner.Run(ctx, "slicer-info", config.SlicerBinary, "--info", meshPath)
	if err != nil {
		return Dimensions{}, errors.Wrap(err, "measure mesh dimensions")
	}

	combined := result.Stdout + "\n" + result.Stderr
	return Dimensions{
		X: extractDimension(combined, sizeXPattern),
		Y: extractDimension(combined, sizeYPattern),
		Z: extractDimension(combined, sizeZPattern),
	}, nil
}

func extractDimension(text string, pattern *regexp.Regexp) float64 {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// ErrBuildVolumeExceeded is returned by ValidateBuildVolume when any axis
// exceeds the technology's machine envelope.
var ErrBuildVolumeExceeded = errors.New("model exceeds build volume")

// ValidateBuildVolume rejects dims that exceed tech's build volume.
func ValidateBuildVolume(tech domain.Technology, dims Dimensions) error {
	if domain.ExceedsBuildVolume(tech, dims.X, dims.Y, dims.Z) {
		v := domain.BuildVolumes[tech]
		return errors.Wrapf(ErrBuildVolumeExceeded,
			"measured (%.2f,%.2f,%.2f) exceeds limit (%.2f,%.2f,%.2f)",
			dims.X, dims.Y, dims.Z, v.X, v.Y, v.Z)
	}
	return nil
}
