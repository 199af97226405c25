package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Counter is the slice of the redis client the limiter needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
}

// RateLimiter counts requests per key in a fixed Redis window (INCR + EXPIRE).
type RateLimiter struct {
	Redis  Counter
	Prefix string
	Limit  int
	Window time.Duration
}

func NewRateLimiter(r Counter, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{Redis: r, Prefix: prefix, Limit: limit, Window: window}
}

func (r *RateLimiter) MiddlewareByKey(keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFunc(c)
		ctx := context.Background()
		redisKey := fmt.Sprintf("%s:%s", r.Prefix, key)
		count, err := r.Redis.Incr(ctx, redisKey).Result()
		if err != nil {
			// limiter outage should not take the chat down
			return c.Next()
		}
		if count == 1 {
			r.Redis.Expire(ctx, redisKey, r.Window)
		}
		if count > int64(r.Limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
		}
		return c.Next()
	}
}
