package ports

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByEmail(ctx context.Context, email string) (*domain.Lead, error)
	List(ctx context.Context, limit int) ([]*domain.Lead, error)
}
