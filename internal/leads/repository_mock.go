package leads

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

var _ ports.LeadRepository = (*MockRepository)(nil)

// MockRepository is a mock implementation of ports.LeadRepository for testing.
type MockRepository struct {
	CreateFunc     func(ctx context.Context, lead *domain.Lead) error
	GetByEmailFunc func(ctx context.Context, email string) (*domain.Lead, error)
	ListFunc       func(ctx context.Context, limit int) ([]*domain.Lead, error)
}

func (m *MockRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lead)
	}
	return nil
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockRepository) List(ctx context.Context, limit int) ([]*domain.Lead, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit)
	}
	return []*domain.Lead{}, nil
}
