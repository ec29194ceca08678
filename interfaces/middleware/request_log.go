package middleware

import (
	"time"

	"video-fetcher/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and logs it once it completes
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set("requestID", requestID)
		ctx.Header(RequestIDHeader, requestID)

		start := time.Now()
		ctx.Next()

		entry := logger.GetLogger().WithFields(map[string]interface{}{
			"requestID": requestID,
			"method":    ctx.Request.Method,
			"path":      ctx.Request.URL.Path,
			"status":    ctx.Writer.Status(),
			"latency":   time.Since(start).String(),
			"ip":        ctx.ClientIP(),
		})
		if len(ctx.Errors) > 0 {
			entry.WithField("errors", ctx.Errors.String()).Error("Request failed")
			return
		}
		entry.Info("Request handled")
	}
}
