package middleware

import (
	"net/http"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/slicehub/slicehub/common/config"
)

// RequireAdminKey gates pricing mutation routes behind a single pre-shared
// token in the "x-api-key" header. If ADMIN_API_KEY is unset the route is
// unusable and every request is rejected with 503, since common.Init already
// fails fast at startup but a late-arriving config reload could still leave
// it empty in a future version of this process.
func RequireAdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := gmw.GetLogger(c)

		if strings.TrimSpace(config.AdminAPIKey) == "" {
			lg.Warn("admin route called with no ADMIN_API_KEY configured")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"success":   false,
				"errorCode": "ADMIN_API_NOT_CONFIGURED",
			})
			return
		}

		provided := c.GetHeader("x-api-key")
		if provided == "" || provided != config.AdminAPIKey {
			lg.Info("admin route rejected: missing or mismatched api key", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"errorCode": "UNAUTHORIZED",
			})
			return
		}

		c.Next()
	}
}
