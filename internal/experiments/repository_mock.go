package experiments

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

var _ ports.ExperimentRepository = (*MockRepository)(nil)

// MockRepository is a mock implementation of ports.ExperimentRepository for testing.
type MockRepository struct {
	CreateFunc          func(ctx context.Context, experiment *domain.Experiment) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Experiment, error)
	GetByNameFunc       func(ctx context.Context, name string) (*domain.Experiment, error)
	GetActiveByPageFunc func(ctx context.Context, page string) ([]*domain.Experiment, error)
	ListFunc            func(ctx context.Context) ([]*domain.Experiment, error)
	ActivateFunc        func(ctx context.Context, id string) error
	DeactivateFunc      func(ctx context.Context, id string) error
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, experiment)
	}
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*domain.Experiment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*domain.Experiment, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockRepository) GetActiveByPage(ctx context.Context, page string) ([]*domain.Experiment, error) {
	if m.GetActiveByPageFunc != nil {
		return m.GetActiveByPageFunc(ctx, page)
	}
	return []*domain.Experiment{}, nil
}

func (m *MockRepository) List(ctx context.Context) ([]*domain.Experiment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*domain.Experiment{}, nil
}

func (m *MockRepository) Activate(ctx context.Context, id string) error {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(ctx, id)
	}
	return nil
}

func (m *MockRepository) Deactivate(ctx context.Context, id string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, id)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
