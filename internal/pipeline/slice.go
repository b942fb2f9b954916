package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	"github.com/google/uuid"

	"github.com/slicehub/slicehub/common/config"
	"github.com/slicehub/slicehub/internal/domain"
	"github.com/slicehub/slicehub/internal/profile"
	"github.com/slicehub/slicehub/internal/subprocess"
)

// OutputArtifact is the result of the SLICED stage: the produced file's
// path (the output directory joined with the generated filename, relative
// when the output directory is) and its technology-specific extension.
type OutputArtifact struct {
	Path      string
	Extension string
}

// outputFilename builds "output-<unix_ms>-<disambiguator>.<ext>". A
// google/uuid-derived disambiguator guards against same-millisecond
// collisions across concurrently executing workers, per spec §5.
func outputFilename(ext string, now func() time.Time) string {
	ms := now().UnixMilli()
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("output-%d-%s.%s", ms, suffix, ext)
}

// Slice locates the profile for (tech, layerHeight), composes the slicer
// invocation per spec §4.4 step 7, and runs it, returning the produced
// artifact's path.
func Slice(
	ctx context.Context,
	runner *subprocess.Runner,
	catalog *profile.Catalog,
	outputDir string,
	tech domain.Technology,
	layerHeightMM float64,
	infill int,
	meshPath string,
	now func() time.Time,
) (OutputArtifact, error) {
	profilePath, err := catalog.Resolve(tech, layerHeightMM)
	if err != nil {
		return OutputArtifact{}, err
	}

	ext := "gcode"
	if tech == domain.SLA {
		ext = "sl1"
	}

	filename := outputFilename(ext, now)
	outputPath := outputDir + "/" + filename

	args := []string{"--load", profilePath, "--center", "100,100", meshPath}
	switch tech {
	case domain.FDM:
		args = append(args,
			"--support-material", "--support-material-auto",
			"--gcode-flavor", "marlin",
			"--export-gcode", "--output", outputPath,
			"--fill-density", strconv.Itoa(infill)+"%",
		)
	case domain.SLA:
		args = append(args, "--export-sla", "--output", outputPath)
	}

	if _, err := runner.Run(ctx, "slicer", config.SlicerBinary, args...); err != nil {
		return OutputArtifact{}, errors.Wrap(err, "invoke slicer")
	}

	return OutputArtifact{Path: outputPath, Extension: ext}, nil
}
