package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/frahspaces/storefront-backend/internal/errors"
	"github.com/frahspaces/storefront-backend/pkg/redis"
	"github.com/gin-gonic/gin"
)

// Limiter takes one token for key. *redis.TokenBucket implements it.
type Limiter interface {
	Take(ctx context.Context, key string) (redis.Decision, error)
	Capacity() int
}

// RateLimit throttles a route group per client IP. A nil limiter disables
// it, and limiter errors let the request through.
func RateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			return
		}

		key := scope + ":ip:" + c.ClientIP()
		decision, err := limiter.Take(c.Request.Context(), key)
		if err != nil {
			GetLoggerFromContext(c).Warn("Rate limiter unavailable, allowing request", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Capacity()))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

		if !decision.Allowed {
			secs := int(math.Ceil(decision.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"key":         key,
				"retry_after": secs,
			})
			apperrors.RespondWithError(c, http.StatusTooManyRequests, apperrors.RateLimited, "Too many requests")
		}
	}
}
