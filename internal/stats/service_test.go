package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/authorsite/internal/adapters/logging"
	"github.com/emiliopalmerini/authorsite/internal/domain"
)

func countingRepo(calls *int) *MockRepository {
	return &MockRepository{
		GetPlatformStatsFunc: func(ctx context.Context) (*domain.PlatformStats, error) {
			*calls++
			return &domain.PlatformStats{Experiments: int64(*calls), Leads: 3}, nil
		},
	}
}

func TestService_GetUsesCache(t *testing.T) {
	calls := 0
	clock := &fakeClock{t: time.Now()}
	cache := NewCache[*domain.PlatformStats](time.Minute).WithClock(clock.Now)
	svc := NewService(countingRepo(&calls), cache, logging.NewNop())
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	second, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)

	clock.Advance(time.Minute)
	third, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), third.Experiments)
}

func TestService_RefreshBypassesCache(t *testing.T) {
	calls := 0
	svc := NewService(countingRepo(&calls), NewCache[*domain.PlatformStats](time.Hour), logging.NewNop())
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)
	refreshed, err := svc.Refresh(ctx)
	require.NoError(t, err)
	cached, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Same(t, refreshed, cached)
}

func TestService_ErrorIsNotCached(t *testing.T) {
	dbErr := errors.New("timeout")
	fail := true
	repo := &MockRepository{
		GetPlatformStatsFunc: func(ctx context.Context) (*domain.PlatformStats, error) {
			if fail {
				return nil, dbErr
			}
			return &domain.PlatformStats{Leads: 1}, nil
		},
	}
	svc := NewService(repo, NewCache[*domain.PlatformStats](time.Hour), logging.NewNop())

	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, dbErr)

	fail = false
	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Leads)
}
