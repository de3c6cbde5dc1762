package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/authorsite/internal/infrastructure/config"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClient(config.RateLimit{RedisAddr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, limit, window), mr
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	rl, _ := newTestLimiter(t, 3, time.Minute)

	for i := 1; i <= 3; i++ {
		d, err := rl.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 3-i, d.Remaining)
		assert.Equal(t, 3, d.Limit)
	}

	d, err := rl.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	rl, _ := newTestLimiter(t, 1, time.Minute)

	d, err := rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = rl.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	ctx := context.Background()
	rl, mr := newTestLimiter(t, 1, time.Minute)

	_, err := rl.Allow(ctx, "a")
	require.NoError(t, err)
	d, err := rl.Allow(ctx, "a")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	mr.FastForward(61 * time.Second)

	d, err = rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRateLimiter_RepairsMissingExpiry(t *testing.T) {
	ctx := context.Background()
	rl, mr := newTestLimiter(t, 5, time.Minute)

	require.NoError(t, mr.Set(keyPrefix+"a", "2"))

	d, err := rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"a"))
}

func TestRateLimiter_ErrorWhenRedisDown(t *testing.T) {
	rl, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	_, err := rl.Allow(context.Background(), "a")
	assert.Error(t, err)
}
