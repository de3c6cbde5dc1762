package billing

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

var _ ports.BillingEventRepository = (*MockRepository)(nil)

// MockRepository is a mock implementation of ports.BillingEventRepository for testing.
type MockRepository struct {
	RecordFunc func(ctx context.Context, event *domain.BillingEvent) (bool, error)
	ListFunc   func(ctx context.Context, limit int) ([]*domain.BillingEvent, error)
}

func (m *MockRepository) Record(ctx context.Context, event *domain.BillingEvent) (bool, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, event)
	}
	return true, nil
}

func (m *MockRepository) List(ctx context.Context, limit int) ([]*domain.BillingEvent, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []*domain.BillingEvent{}, nil
}
