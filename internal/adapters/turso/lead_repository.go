package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/util"
)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO leads (id, email, name, source, page, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		lead.ID,
		lead.Email,
		util.NullString(lead.Name),
		util.NullString(lead.Source),
		util.NullString(lead.Page),
		formatTime(lead.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lead %q: %w", lead.Email, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, source, page, created_at
		FROM leads WHERE email = ?`, email)

	lead, err := scanLead(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, limit int) ([]*domain.Lead, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, source, page, created_at
		FROM leads ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(s scanner) (*domain.Lead, error) {
	var (
		lead               domain.Lead
		name, source, page sql.NullString
		createdAt          string
	)
	if err := s.Scan(&lead.ID, &lead.Email, &name, &source, &page, &createdAt); err != nil {
		return nil, err
	}
	lead.Name = name.String
	lead.Source = source.String
	lead.Page = page.String
	lead.CreatedAt = parseTime(createdAt)
	return &lead, nil
}
