package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"lab-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// WindowCounter records a hit for key and returns how many hits the key
// had inside the window before this one.
type WindowCounter interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error)
}

// RedisWindow is a sliding window kept in a redis sorted set.
type RedisWindow struct {
	client *redis.Client
}

func NewRedisWindow(client *redis.Client) *RedisWindow {
	return &RedisWindow{client: client}
}

func (w *RedisWindow) Hit(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	windowStart := now.Add(-window)

	pipe := w.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, key, window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return countCmd.Val(), nil
}

// RateLimiter limits requests per client IP (or user when authenticated).
type RateLimiter struct {
	counter     WindowCounter
	prefix      string
	maxRequests int
	window      time.Duration
	now         func() time.Time
}

func NewRateLimiter(counter WindowCounter, prefix string, maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counter:     counter,
		prefix:      prefix,
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.IP()
		if userID := c.Locals(localUserID); userID != nil {
			identifier = fmt.Sprintf("user:%v", userID)
		}
		key := fmt.Sprintf("ratelimit:%s:%s", rl.prefix, identifier)

		now := rl.now()
		count, err := rl.counter.Hit(c.UserContext(), key, now, rl.window)
		if err != nil {
			// Fail open: a redis outage must not lock everyone out.
			logger.Error(c.UserContext()).Err(err).Str("identifier", identifier).Msg("rate limiter error")
			return c.Next()
		}

		remaining := rl.maxRequests - int(count) - 1
		if remaining < 0 {
			remaining = 0
		}
		resetTime := now.Add(rl.window)

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxRequests))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if count >= int64(rl.maxRequests) {
			logger.Warn(c.UserContext()).
				Str("identifier", identifier).
				Int("limit", rl.maxRequests).
				Msg("rate limit exceeded")
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rl.window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": fmt.Sprintf("Too many requests. Try again in %v", rl.window.Round(time.Second)),
			})
		}
		return c.Next()
	}
}
