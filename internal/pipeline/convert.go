package pipeline

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/slicehub/slicehub/common/config"
	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/subprocess"
)

// converterSpec describes the external tool that turns pre-flight-validated
// source geometry into a canonical triangular mesh at "<input>.stl".
type converterSpec struct {
	tool   string
	binary string
	// withDepth appends "--depth <mm>" after the standard "<input> <output>"
	// pair, for the 2D converters that extrude to a given depth.
	withDepth bool
}

var converterByClass = map[formatClass]converterSpec{
	classImage:  {tool: "image-to-mesh", binary: config.ImageToMeshBinary, withDepth: true},
	classVector: {tool: "vector-to-mesh", binary: config.VectorToMeshBinary, withDepth: true},
	classMesh:   {tool: "mesh-to-mesh", binary: config.MeshToMeshBinary},
	classCAD:    {tool: "cad-to-mesh", binary: config.CADToMeshBinary},
}

// Convert dispatches inputPath to the converter matching its format class
// and returns the path to the resulting "<input>.stl", or a classified
// error. ".stl" inputs require no conversion and are returned unchanged.
func Convert(ctx context.Context, runner *subprocess.Runner, ctxRec *Context, inputPath string, class formatClass, depthMM float64) (string, error) {
	if class == classMesh && strings.HasSuffix(strings.ToLower(inputPath), ".stl") {
		return inputPath, nil
	}

	spec, ok := converterByClass[class]
	if !ok {
		return "", errors.Errorf("no converter registered for input %s", inputPath)
	}

	outputPath := ctxRec.Track(inputPath + ".stl")

	args := []string{inputPath, outputPath}
	if spec.withDepth {
		args = append(args, "--depth", formatFloat(depthMM))
	}

	result, err := runner.Run(ctx, spec.tool, spec.binary, args...)
	if err != nil {
		return "", classifyConverterError(spec.tool, err)
	}

	logger.Logger.Debug("conversion completed",
		zap.String("tool", spec.tool), zap.String("input", inputPath), zap.String("output", outputPath),
		zap.Int("stdout_len", len(result.Stdout)))

	return outputPath, nil
}

func classifyConverterError(tool string, err error) error {
	var subErr *subprocess.Error
	if !errors.As(err, &subErr) {
		return errors.Wrap(err, "run converter")
	}
	if subErr.TimedOut {
		return errors.Wrap(subErr, "converter timed out")
	}

	kind := DefaultClassifier.Classify(tool, subErr.ExitCode, subErr.Message)
	if kind == ErrorKindInvalidGeometry {
		return errors.Wrapf(ErrInvalidSourceGeometry, "%s: %s", tool, subErr.Message)
	}
	return errors.Wrapf(subErr, "%s failed", tool)
}

func formatFloat(v float64) string {
	return trimTrailingZeros(v)
}
