package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/points-api/internal/logger"
	"github.com/yukikurage/points-api/internal/metrics"
)

// RequestIDHeader carries the correlation id in and out of the service.
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with a correlation id, logs it once handled
// and records HTTP metrics.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		correlationID := c.GetHeader(RequestIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(logger.WithCorrelationID(c.Request.Context(), correlationID))
		c.Header(RequestIDHeader, correlationID)

		c.Next()

		status := c.Writer.Status()
		duration := time.Since(start)
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), status, duration)

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", duration),
			slog.String("correlation_id", correlationID),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("handled http request", attrs...)
		case status >= 400:
			log.Warn("handled http request", attrs...)
		default:
			log.Info("handled http request", attrs...)
		}
	}
}
