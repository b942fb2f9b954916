package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slicehub/slicehub/internal/metrics"
)

// Metrics times every request and reports it to the active Recorder, so
// GET /metrics reflects request volume and latency alongside the
// pipeline-specific gauges and counters recorded deeper in the stack.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.GlobalRecorder.RecordHTTPRequest(start, path, c.Request.Method, strconv.Itoa(c.Writer.Status()))
	}
}
