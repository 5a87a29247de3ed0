package httpmiddleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a logged 500 with the standard error
// body. The panic value never reaches the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			zctx.From(c.Request.Context()).Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("route", c.FullPath()),
				zap.Stack("stack"),
			)
			c.Header("Connection", "close")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "internal server error",
			})
		}()
		c.Next()
	}
}
