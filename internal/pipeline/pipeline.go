package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	errors "github.com/Laisky/errors/v2"

	"github.com/slicehub/slicehub/internal/archive"
	"github.com/slicehub/slicehub/internal/domain"
	"github.com/slicehub/slicehub/internal/estimator"
	"github.com/slicehub/slicehub/internal/pricing"
	"github.com/slicehub/slicehub/internal/profile"
	"github.com/slicehub/slicehub/internal/sliceio"
	"github.com/slicehub/slicehub/internal/subprocess"
)

// Deps bundles every collaborator the pipeline needs, so Run itself stays a
// pure orchestration function over injected dependencies.
type Deps struct {
	Runner       *subprocess.Runner
	Catalog      *profile.Catalog
	Pricing      *pricing.Registry
	ArchiveGuard archive.Guard
	InputDir     string
	OutputDir    string
	Now          func() time.Time
}

// Run executes the full UPLOADED -> DONE state machine for one slice
// request. uploadedPath must already be tracked on rec's cleanup list by the
// caller (the multipart-handling HTTP layer), with rec.Extension set to its
// lowercased extension.
func Run(ctx context.Context, deps Deps, rec *Context, uploadedPath string) (domain.PrintStats, OutputArtifact, error) {
	effectivePath, effectiveExt, err := classifyUpload(rec, deps, uploadedPath)
	if err != nil {
		return domain.PrintStats{}, OutputArtifact{}, err
	}

	class := classify(effectiveExt)
	if class == classUnsupported {
		return domain.PrintStats{}, OutputArtifact{}, NewPipelineError(ErrInvalidSourceGeometryCode,
			errors.Errorf("unsupported source format %q", effectiveExt))
	}

	if class == classImage {
		if err := validateRasterImage(effectivePath); err != nil {
			return domain.PrintStats{}, OutputArtifact{}, NewPipelineError(ErrInvalidSourceGeometryCode, err)
		}
	}

	meshPath, err := Convert(ctx, deps.Runner, rec, effectivePath, class, rec.DepthMM)
	if err != nil {
		return domain.PrintStats{}, OutputArtifact{}, classifyStageError(err)
	}

	meshPath = Orient(ctx, deps.Runner, rec, meshPath)

	dims, err := Measure(ctx, deps.Runner, meshPath)
	if err != nil {
		return domain.PrintStats{}, OutputArtifact{}, NewPipelineError(ErrInternalProcessingError, err)
	}

	if err := ValidateBuildVolume(rec.Technology, dims); err != nil {
		return domain.PrintStats{}, OutputArtifact{}, NewPipelineError(ErrModelExceedsBuildVolume, err)
	}

	artifact, err := Slice(ctx, deps.Runner, deps.Catalog, deps.OutputDir, rec.Technology, rec.LayerHeightMM, rec.Infill, meshPath, deps.Now)
	if err != nil {
		return domain.PrintStats{}, OutputArtifact{}, NewPipelineError(ErrInternalProcessingError, err)
	}

	stats, err := parseAndPrice(deps, rec, artifact, dims)
	if err != nil {
		return domain.PrintStats{}, OutputArtifact{}, NewPipelineError(ErrInternalProcessingError, err)
	}

	return stats, artifact, nil
}

// classifyUpload handles the archive branch: if the upload is a zip, it is
// validated, extracted into a fresh per-request directory, and the first
// supported entry is selected as the effective input. Otherwise the upload
// itself is the effective input.
func classifyUpload(rec *Context, deps Deps, uploadedPath string) (string, string, error) {
	if rec.Extension != ".zip" {
		return uploadedPath, rec.Extension, nil
	}

	extractDir, err := os.MkdirTemp(deps.InputDir, "extract-*")
	if err != nil {
		return "", "", NewPipelineError(ErrInternalProcessingError, errors.Wrap(err, "create extraction directory"))
	}
	rec.Track(extractDir)

	extracted, err := archive.Extract(uploadedPath, extractDir, deps.ArchiveGuard)
	if err != nil {
		return "", "", classifyArchiveError(err)
	}

	entry := archive.FirstSupportedEntry(extracted)
	if entry == "" {
		return "", "", NewPipelineError(ErrInvalidSourceGeometryCode,
			errors.New("archive contains no file in a supported format"))
	}

	return entry, toLowerExt(entry), nil
}

func toLowerExt(path string) string {
	ext := filepath.Ext(path)
	return lower(ext)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func classifyArchiveError(err error) error {
	switch {
	case errors.Is(err, archive.ErrEncrypted), errors.Is(err, archive.ErrTooManyEntries),
		errors.Is(err, archive.ErrTooLarge), errors.Is(err, archive.ErrPathTraversal):
		return NewPipelineError(ErrInvalidSourceGeometryCode, err)
	default:
		return NewPipelineError(ErrInternalProcessingError, err)
	}
}

func classifyStageError(err error) error {
	if errors.Is(err, ErrInvalidSourceGeometry) {
		return NewPipelineError(ErrInvalidSourceGeometryCode, err)
	}
	return NewPipelineError(ErrInternalProcessingError, err)
}

func parseAndPrice(deps Deps, rec *Context, artifact OutputArtifact, dims Dimensions) (domain.PrintStats, error) {
	var printTimeSeconds int
	var filamentUsedM float64
	var readableSuffix string

	if rec.Technology == domain.FDM {
		gcode, err := os.ReadFile(artifact.Path)
		if err != nil {
			return domain.PrintStats{}, errors.Wrap(err, "read gcode artifact")
		}
		printTimeSeconds, filamentUsedM, err = sliceio.ParseFDMGCode(string(gcode))
		if err != nil {
			return domain.PrintStats{}, errors.Wrap(err, "parse gcode artifact")
		}
	} else {
		// SLA: the sl1 archive does not carry a reliably parseable time
		// marker in the baseline, so fall through to the layer-based
		// estimate whenever no time was otherwise determined.
		readableSuffix = "(Est.)"
	}

	if printTimeSeconds == 0 && dims.Z > 0 {
		printTimeSeconds = sliceio.EstimateSLASeconds(dims.Z, rec.LayerHeightMM)
		if rec.Technology == domain.FDM {
			readableSuffix = "(Est.)"
		}
	}

	rate := deps.Pricing.RateFor(rec.Technology, rec.Material)
	price := estimator.EstimatePriceHUF(printTimeSeconds, rate)

	return domain.PrintStats{
		PrintTimeSeconds:  printTimeSeconds,
		PrintTimeReadable: sliceio.Readable(printTimeSeconds, readableSuffix),
		MaterialUsedM:     filamentUsedM,
		ObjectHeightMM:    dims.Z,
		EstimatedPriceHUF: price,
	}, nil
}

// ValidateLayerHeight checks layerHeightMM against tech's allowed set,
// returning the appropriate client ErrorCode on failure.
func ValidateLayerHeight(tech domain.Technology, layerHeightMM float64) error {
	if layerHeightMM <= 0 {
		return NewPipelineError(ErrInvalidLayerHeight, errors.Errorf("layer height %v must be positive", layerHeightMM))
	}
	if !domain.ValidLayerHeight(tech, layerHeightMM) {
		return NewPipelineError(ErrInvalidLayerHeightForTechnology,
			errors.Errorf("layer height %v is not allowed for %s", layerHeightMM, tech))
	}
	return nil
}

// ParseLayerHeight parses the multipart "layerHeight" field.
func ParseLayerHeight(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, NewPipelineError(ErrInvalidLayerHeight, errors.Wrapf(err, "parse layer height %q", raw))
	}
	return v, nil
}
