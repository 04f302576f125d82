package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kiranbanna12/xrozen-chat/utils/ratelimit"
)

// RateLimitMiddleware limits each client IP to qps requests per second
// with the given burst headroom, backed by the shared Redis limiter so
// the limit holds across nodes.
func RateLimitMiddleware(limiter ratelimit.Limiter, qps, burst int) gin.HandlerFunc {
	limit := qps + burst
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP(), limit, time.Second)
		if err != nil || !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
