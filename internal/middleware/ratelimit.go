package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/points-api/internal/errors"
	"github.com/yukikurage/points-api/internal/ratelimit"
)

// RateLimit throttles a route per authenticated user, or per client IP when there
// is no user. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, limit int, window time.Duration, log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ip:%s", scope, c.ClientIP())
		if userID, ok := GetUserID(c); ok {
			key = fmt.Sprintf("%s:user:%d", scope, userID)
		}

		result, err := limiter.Check(c.Request.Context(), key, limit, window)
		if err != nil {
			log.Warn("rate limiter error", slog.String("key", key), slog.Any("error", err))
			c.Next()
			return
		}

		if !result.Allowed {
			log.Warn("rate limit exceeded", slog.String("key", key))
			c.Header("Retry-After", fmt.Sprintf("%.0f", time.Until(result.ResetAt).Seconds()))
			apierrors.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
