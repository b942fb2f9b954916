package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController serves GET /health.
type HealthController struct {
	startedAt time.Time
}

// NewHealthController builds a HealthController whose uptime is measured
// from startedAt.
func NewHealthController(startedAt time.Time) *HealthController {
	return &HealthController{startedAt: startedAt}
}

// Health handles GET /health.
func (h *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "OK",
		"uptime": int(time.Since(h.startedAt).Seconds()),
	})
}
