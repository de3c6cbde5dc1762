package stats

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

// Service serves platform-wide counters from a short-lived cache.
type Service struct {
	repo   ports.StatsRepository
	cache  *Cache[*domain.PlatformStats]
	logger ports.Logger
}

func NewService(repo ports.StatsRepository, cache *Cache[*domain.PlatformStats], logger ports.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) Get(ctx context.Context) (*domain.PlatformStats, error) {
	if cached, ok := s.cache.Get(); ok {
		return cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh reads the counters from the repository and replaces the cached copy.
func (s *Service) Refresh(ctx context.Context) (*domain.PlatformStats, error) {
	stats, err := s.repo.GetPlatformStats(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(stats)
	s.logger.Debug("platform stats refreshed",
		"experiments", stats.Experiments, "leads", stats.Leads, "billing_events", stats.BillingEvents)
	return stats, nil
}
