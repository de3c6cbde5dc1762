package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	defaultSource    = "landing"
)

type CaptureLeadInput struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Source string `json:"source,omitempty"`
	Page   string `json:"page,omitempty"`
}

// Service captures email sign-ups from landing pages.
type Service struct {
	repo    ports.LeadRepository
	metrics ports.MetricsExporter
	logger  ports.Logger
	now     func() time.Time
}

func NewService(repo ports.LeadRepository, metrics ports.MetricsExporter, logger ports.Logger) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Capture stores a lead. An address that already signed up returns the
// existing lead and the second bool is false.
func (s *Service) Capture(ctx context.Context, in CaptureLeadInput) (*domain.Lead, bool, error) {
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.logger.Debug("lead already captured", "id", existing.ID)
		return existing, false, nil
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = defaultSource
	}
	lead := &domain.Lead{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Source:    source,
		Page:      strings.TrimSpace(in.Page),
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		// Lost a race with a concurrent sign-up for the same address.
		if errors.Is(err, domain.ErrConflict) {
			existing, getErr := s.repo.GetByEmail(ctx, email)
			if getErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	if err := s.metrics.RecordLead(ctx, lead.Page, lead.Source); err != nil {
		s.logger.Warn("failed to record lead metric", "error", err)
	}
	s.logger.Info("lead captured", "id", lead.ID, "source", lead.Source, "page", lead.Page)
	return lead, true, nil
}

// List returns the most recent leads, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*domain.Lead, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit cannot be negative", domain.ErrInvalidArgument)
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, limit)
}
