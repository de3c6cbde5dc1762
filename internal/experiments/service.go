package experiments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

type GetExperimentsRequest struct {
	Page   string `json:"page"`
	UserID string `json:"userId,omitempty"`
}

type GetExperimentsResponse struct {
	// SessionID is the key used for bucketing: the caller's user id, or a
	// fresh identifier for anonymous visitors.
	SessionID   string                 `json:"sessionId"`
	Experiments []ExperimentAssignment `json:"experiments"`
}

type ExperimentAssignment struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Variant VariantAssignment `json:"variant"`
}

type VariantAssignment struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Config domain.VariantConfig `json:"config"`
}

// Service assigns visitors to variants of the experiments running on a page.
type Service struct {
	repo    ports.ExperimentRepository
	metrics ports.MetricsExporter
	logger  ports.Logger
}

func NewService(repo ports.ExperimentRepository, metrics ports.MetricsExporter, logger ports.Logger) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

// GetExperiments returns one variant per active experiment on req.Page.
// Repository errors are returned unchanged.
func (s *Service) GetExperiments(ctx context.Context, req *GetExperimentsRequest) (*GetExperimentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(req.Page) == "" {
		return nil, fmt.Errorf("%w: page is required", domain.ErrInvalidArgument)
	}

	key := req.UserID
	if strings.TrimSpace(key) == "" {
		key = uuid.NewString()
	}

	active, err := s.repo.GetActiveByPage(ctx, req.Page)
	if err != nil {
		return nil, err
	}

	results := make([]ExperimentAssignment, 0, len(active))
	for _, exp := range active {
		if exp == nil {
			return nil, fmt.Errorf("%w: nil experiment for page %q", domain.ErrInvalidArgument, req.Page)
		}
		if total := exp.TrafficTotal(); total > domain.MaxTrafficPercentage {
			s.logger.Warn("experiment traffic exceeds 100 percent",
				"experiment", exp.Name, "page", exp.Page, "total", total)
		}

		variant, err := domain.AssignVariant(exp, key)
		if err != nil {
			return nil, fmt.Errorf("experiment %q: %w", exp.Name, err)
		}

		cfg := variant.Config
		if cfg == nil {
			cfg = domain.VariantConfig{}
		}
		results = append(results, ExperimentAssignment{
			ID:   exp.ID,
			Name: exp.Name,
			Variant: VariantAssignment{
				ID:     variant.ID,
				Name:   variant.Name,
				Config: cfg,
			},
		})
	}

	for _, r := range results {
		err := s.metrics.RecordExposure(ctx, ports.Exposure{
			ExperimentID:   r.ID,
			ExperimentName: r.Name,
			VariantID:      r.Variant.ID,
			Page:           req.Page,
		})
		if err != nil {
			s.logger.Warn("failed to record exposure", "experiment", r.Name, "error", err)
		}
	}

	return &GetExperimentsResponse{
		SessionID:   key,
		Experiments: results,
	}, nil
}
