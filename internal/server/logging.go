package server

import (
	"time"

	"github.com/gaurav-prajapat/featuresgym-sub009/internal/auth"
	"github.com/gaurav-prajapat/featuresgym-sub009/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs each request once it has been served.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if id, ok := auth.GetMemberID(c); ok {
			args = append(args, "member_id", id)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		if c.Writer.Status() >= 500 {
			logger.Error("HTTP request", args...)
			return
		}
		logger.Info("HTTP request", args...)
	}
}
