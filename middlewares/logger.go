package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request; the level follows the status so
// 4xx business rejections never show up as errors.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("remote_addr", c.ClientIP()),
			slog.Duration("duration", time.Since(start)),
		}
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.ErrorContext(ctx, "request completed", attrs...)
		case status >= 400:
			log.WarnContext(ctx, "request completed", attrs...)
		default:
			log.InfoContext(ctx, "request completed", attrs...)
		}
	}
}
