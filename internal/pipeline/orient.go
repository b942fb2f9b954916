package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/Laisky/zap"

	"github.com/slicehub/slicehub/common/config"
	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/subprocess"
)

// Orient runs the best-effort orientation optimizer against meshPath,
// producing "<stem>_oriented.stl". Per spec §4.4 step 4, any failure
// (including a missing expected output) is logged as a warning and the
// pre-orientation mesh is returned unchanged; orientation never fails the
// request.
func Orient(ctx context.Context, runner *subprocess.Runner, ctxRec *Context, meshPath string) string {
	stem := strings.TrimSuffix(meshPath, ".stl")
	outputPath := stem + "_oriented.stl"

	_, err := runner.Run(ctx, "orient", config.OrientBinary, meshPath, outputPath)
	if err != nil {
		logger.Logger.Warn("orientation optimizer failed, continuing with pre-orientation mesh",
			zap.String("mesh", meshPath), zap.Error(err))
		return meshPath
	}

	if _, statErr := os.Stat(outputPath); statErr != nil {
		logger.Logger.Warn("orientation optimizer produced no output, continuing with pre-orientation mesh",
			zap.String("mesh", meshPath), zap.Error(statErr))
		return meshPath
	}

	ctxRec.Track(outputPath)
	return outputPath
}
