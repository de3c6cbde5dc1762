package stats

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

var _ ports.StatsRepository = (*MockRepository)(nil)

// MockRepository is a mock implementation of ports.StatsRepository for testing.
type MockRepository struct {
	GetPlatformStatsFunc func(ctx context.Context) (*domain.PlatformStats, error)
}

func (m *MockRepository) GetPlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	if m.GetPlatformStatsFunc != nil {
		return m.GetPlatformStatsFunc(ctx)
	}
	return &domain.PlatformStats{}, nil
}
