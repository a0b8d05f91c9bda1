package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/enroll-leads-api/pkg/errors"
	"github.com/noah-isme/enroll-leads-api/pkg/response"
)

// RateLimiter applies Redis-backed fixed-window limits per client IP.
// When Redis is unreachable requests are admitted.
type RateLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRateLimiter constructs a RateLimiter. A nil client disables limiting.
func NewRateLimiter(client *redis.Client, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{client: client, logger: logger}
}

// Limit returns middleware enforcing at most limit requests per window for
// the given scope.
func (rl *RateLimiter) Limit(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		ctx := c.Request.Context()

		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warn("rate limiter unavailable, admitting request",
				zap.String("scope", scope),
				zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.client.Expire(ctx, key, window).Err(); err != nil {
				rl.logger.Warn("failed to set rate limit window", zap.String("key", key), zap.Error(err))
			}
		}

		if count > int64(limit) {
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, "too many requests, try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}
