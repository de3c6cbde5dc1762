package ports

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

type StatsRepository interface {
	GetPlatformStats(ctx context.Context) (*domain.PlatformStats, error)
}
