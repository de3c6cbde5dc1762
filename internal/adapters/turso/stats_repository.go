package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetPlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	stats, err := WithRetry(ctx, readRetries, func() (*domain.PlatformStats, error) {
		var s domain.PlatformStats
		err := r.db.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM experiments),
				(SELECT COUNT(*) FROM experiments WHERE is_active = 1),
				(SELECT COUNT(*) FROM leads),
				(SELECT COUNT(*) FROM billing_events)`,
		).Scan(&s.Experiments, &s.ActiveExperiments, &s.Leads, &s.BillingEvents)
		return &s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get platform stats: %w", err)
	}
	stats.GeneratedAt = time.Now().UTC()
	return stats, nil
}
