package middleware

import (
	"net/http"
	"strconv"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/slicehub/slicehub/internal/metrics"
	"github.com/slicehub/slicehub/internal/ratelimit"
)

// SliceRateLimit enforces the per-IP fixed window in front of the slicing
// routes, keyed by the first entry of X-Forwarded-For when present,
// otherwise the socket remote address.
func SliceRateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)
		decision := limiter.Allow(key)
		if !decision.Allowed {
			gmw.GetLogger(c).Info("rate limit exceeded", zap.String("client", key))
			metrics.GlobalRecorder.RecordRateLimitRejection(c.FullPath())
			c.Header("Retry-After", strconv.Itoa(decision.RetryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":           false,
				"errorCode":         "RATE_LIMIT_EXCEEDED",
				"retryAfterSeconds": decision.RetryAfterSeconds,
			})
			return
		}

		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		for i, r := range forwarded {
			if r == ',' {
				return forwarded[:i]
			}
		}
		return forwarded
	}
	return c.ClientIP()
}
