package httpmiddleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// InjectLogger stores lg, tagged with the request id, in the request
// context so handlers and services can use zctx.From.
func InjectLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		reqLg := lg
		if id := RequestIDFromContext(ctx); id != "" {
			reqLg = lg.With(zap.String("request_id", id))
		}
		c.Request = c.Request.WithContext(zctx.Base(ctx, reqLg))
		c.Next()
	}
}

// LogRequests logs one line per finished request. Server errors log at
// warn level.
func LogRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		lg := zctx.From(c.Request.Context())
		if status >= 500 {
			lg.Warn("Request failed", fields...)
			return
		}
		lg.Info("Request", fields...)
	}
}
