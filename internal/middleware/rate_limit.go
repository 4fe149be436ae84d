package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"simbi_backend/internal/logger"
	"simbi_backend/pkg/apperrors"
)

const rateLimitPrefix = "ratelimit"

// NewRateLimiter counts requests per key in fixed windows. Counters live in
// Redis when client is set so instances share them, in process memory otherwise.
func NewRateLimiter(ctx context.Context, client *redis.Client, requests int, window time.Duration) *limiter.Limiter {
	if window <= 0 {
		window = time.Minute
	}
	rate := limiter.Rate{Period: window, Limit: int64(requests)}

	if client != nil {
		store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   rateLimitPrefix,
			MaxRetry: limiter.DefaultMaxRetry,
		})
		if err == nil {
			return limiter.New(store, rate)
		}
		logger.CtxWithError(ctx, "Redis rate limit store unavailable, counting in memory", err)
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          rateLimitPrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
	return limiter.New(store, rate)
}

// RateLimitMiddleware limits requests per client IP. Store errors let the request through.
func RateLimitMiddleware(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		result, err := l.Get(ctx, c.ClientIP())
		if err != nil {
			logger.CtxWithError(ctx, "Rate limiter unavailable", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

		if result.Reached {
			apperrors.HandleError(c, apperrors.NewTooManyRequestsError("Too many requests, please slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}
