package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slicehub/slicehub/internal/metrics"
)

// MetricsHandler wraps a PrometheusRecorder's registry in a gin handler for
// GET /metrics. When metrics are disabled, the fallback handler reports 404
// so operators get an explicit signal rather than an empty 200.
func MetricsHandler(recorder *metrics.PrometheusRecorder) gin.HandlerFunc {
	if recorder == nil {
		return func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "errorCode": "METRICS_DISABLED"})
		}
	}

	handler := promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
