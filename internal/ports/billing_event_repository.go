package ports

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

type BillingEventRepository interface {
	// Record stores the event and reports whether it was new. Replays of an
	// already stored event id return false and no error.
	Record(ctx context.Context, event *domain.BillingEvent) (bool, error)
	List(ctx context.Context, limit int) ([]*domain.BillingEvent, error)
}
