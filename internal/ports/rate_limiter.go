package ports

import (
	"context"
	"time"
)

// RateLimiter decides whether a client identified by key may make another request.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitDecision, error)
}

type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long until the current window resets.
	RetryAfter time.Duration
}
