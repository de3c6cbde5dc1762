package ports

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

type ExperimentRepository interface {
	Create(ctx context.Context, experiment *domain.Experiment) error
	GetByID(ctx context.Context, id string) (*domain.Experiment, error)
	GetByName(ctx context.Context, name string) (*domain.Experiment, error)
	// GetActiveByPage returns active experiments whose page matches exactly, oldest first.
	GetActiveByPage(ctx context.Context, page string) ([]*domain.Experiment, error)
	List(ctx context.Context) ([]*domain.Experiment, error)
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
