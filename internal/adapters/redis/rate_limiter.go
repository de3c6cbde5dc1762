package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/emiliopalmerini/authorsite/internal/infrastructure/config"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

const keyPrefix = "authorsite:ratelimit:"

var _ ports.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window request counter stored in Redis.
// The first request of a window creates the counter and sets its expiry.
type RateLimiter struct {
	client *goredis.Client
	limit  int
	window time.Duration
}

func NewClient(cfg config.RateLimit) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewRateLimiter(client *goredis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (r *RateLimiter) Allow(ctx context.Context, key string) (ports.RateLimitDecision, error) {
	k := keyPrefix + key

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, k, r.window).Err(); err != nil {
			return ports.RateLimitDecision{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	ttl, err := r.client.TTL(ctx, k).Result()
	if err != nil {
		return ports.RateLimitDecision{}, fmt.Errorf("failed to read rate limit window: %w", err)
	}
	// A counter left without expiry by a failed Expire would block the key forever.
	if ttl < 0 {
		if err := r.client.Expire(ctx, k, r.window).Err(); err != nil {
			return ports.RateLimitDecision{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		ttl = r.window
	}

	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return ports.RateLimitDecision{
		Allowed:    count <= int64(r.limit),
		Limit:      r.limit,
		Remaining:  remaining,
		RetryAfter: ttl,
	}, nil
}
