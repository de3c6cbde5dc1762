package experiments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

type CreateExperimentInput struct {
	Name     string         `json:"name"`
	Page     string         `json:"page"`
	Active   bool           `json:"active"`
	Variants []VariantInput `json:"variants"`
}

type VariantInput struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	TrafficPercentage float64              `json:"trafficPercentage"`
	Config            domain.VariantConfig `json:"config,omitempty"`
}

// Admin manages experiment definitions.
type Admin struct {
	repo   ports.ExperimentRepository
	logger ports.Logger
	now    func() time.Time
}

func NewAdmin(repo ports.ExperimentRepository, logger ports.Logger) *Admin {
	return &Admin{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and stores a new experiment. Experiment names are unique.
func (a *Admin) Create(ctx context.Context, in CreateExperimentInput) (*domain.Experiment, error) {
	exp := &domain.Experiment{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Page:      strings.TrimSpace(in.Page),
		IsActive:  in.Active,
		Variants:  make([]domain.ExperimentVariant, 0, len(in.Variants)),
		CreatedAt: a.now().UTC(),
	}
	for _, v := range in.Variants {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			name = v.ID
		}
		exp.Variants = append(exp.Variants, domain.ExperimentVariant{
			ID:                strings.TrimSpace(v.ID),
			Name:              name,
			TrafficPercentage: v.TrafficPercentage,
			Config:            v.Config,
		})
	}

	if err := exp.Validate(); err != nil {
		return nil, err
	}

	existing, err := a.repo.GetByName(ctx, exp.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: experiment %q already exists", domain.ErrConflict, exp.Name)
	}

	if err := a.repo.Create(ctx, exp); err != nil {
		return nil, err
	}

	a.logger.Info("experiment created", "id", exp.ID, "name", exp.Name, "page", exp.Page, "variants", len(exp.Variants))
	return exp, nil
}

func (a *Admin) List(ctx context.Context) ([]*domain.Experiment, error) {
	return a.repo.List(ctx)
}

// Get returns the experiment with the given id or name.
func (a *Admin) Get(ctx context.Context, idOrName string) (*domain.Experiment, error) {
	exp, err := a.repo.GetByID(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		exp, err = a.repo.GetByName(ctx, idOrName)
		if err != nil {
			return nil, err
		}
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: experiment %q", domain.ErrNotFound, idOrName)
	}
	return exp, nil
}

func (a *Admin) Activate(ctx context.Context, idOrName string) error {
	exp, err := a.Get(ctx, idOrName)
	if err != nil {
		return err
	}
	if err := a.repo.Activate(ctx, exp.ID); err != nil {
		return err
	}
	a.logger.Info("experiment activated", "id", exp.ID, "name", exp.Name)
	return nil
}

func (a *Admin) Deactivate(ctx context.Context, idOrName string) error {
	exp, err := a.Get(ctx, idOrName)
	if err != nil {
		return err
	}
	if err := a.repo.Deactivate(ctx, exp.ID); err != nil {
		return err
	}
	a.logger.Info("experiment deactivated", "id", exp.ID, "name", exp.Name)
	return nil
}

func (a *Admin) Delete(ctx context.Context, idOrName string) error {
	exp, err := a.Get(ctx, idOrName)
	if err != nil {
		return err
	}
	if err := a.repo.Delete(ctx, exp.ID); err != nil {
		return err
	}
	a.logger.Info("experiment deleted", "id", exp.ID, "name", exp.Name)
	return nil
}
