package middlewares

import (
	"github.com/gin-gonic/gin"

	logger "github.com/Kiranbanna12/xrozen-chat/middleware/log"
)

// TraceMiddleware attaches a trace ID to every request context, honoring
// an incoming X-Trace-Id header so traces span services.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logger.WithTraceID(c.Request.Context(), c.GetHeader("X-Trace-Id"))
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-Id", logger.GetTraceID(ctx))
		c.Next()
	}
}
