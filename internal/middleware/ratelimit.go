package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/onlineworkerske/backend/internal/http/dto"
	"github.com/redis/go-redis/v9"
)

// Counters are namespaced so the API can share a Redis with other
// deployments of the platform.
const rateLimitKeyPrefix = "owke:rl"

func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("%s:%s:%s", rateLimitKeyPrefix, c.Path(), c.IP())

		ctx := context.Background()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			return c.Next() // fail open
		}

		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Message: "rate limit exceeded"})
		}

		return c.Next()
	}
}
