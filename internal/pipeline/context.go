// Package pipeline implements the per-request ingestion, conversion,
// orientation, measurement, slicing, parsing, and pricing state machine:
// UPLOADED -> CLASSIFIED -> CONVERTED -> ORIENTED -> MEASURED -> VALIDATED
// -> SLICED -> PARSED -> PRICED -> DONE.
package pipeline

import (
	"os"

	"github.com/Laisky/zap"

	"github.com/slicehub/slicehub/common/logger"
	"github.com/slicehub/slicehub/internal/domain"
)

// Context is the per-request record threaded through every pipeline stage.
// It owns the cleanup list: every filesystem path created while processing
// the request is appended here and removed, in order, before the handler
// returns on every exit path (success or failure).
type Context struct {
	RequestID string

	OriginalFilename string
	Extension        string

	Technology    domain.Technology
	Material      string
	LayerHeightMM float64
	Infill        int
	DepthMM       float64

	cleanup []string
}

// Track appends path to the cleanup list and returns it unchanged, so call
// sites can write "path := ctx.Track(newPath)".
func (c *Context) Track(path string) string {
	c.cleanup = append(c.cleanup, path)
	return path
}

// Cleanup removes every tracked path in order, swallowing and logging
// per-path errors so one failed removal never blocks the rest. It is safe
// to call multiple times (idempotent against already-removed paths).
func (c *Context) Cleanup() {
	for _, path := range c.cleanup {
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Logger.Warn("cleanup stat failed", zap.String("path", path), zap.Error(err))
			}
			continue
		}

		if info.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			logger.Logger.Warn("cleanup remove failed", zap.String("path", path), zap.Error(err))
		}
	}
}
