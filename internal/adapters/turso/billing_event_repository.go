package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

type BillingEventRepository struct {
	db *sql.DB
}

func NewBillingEventRepository(db *sql.DB) *BillingEventRepository {
	return &BillingEventRepository{db: db}
}

func (r *BillingEventRepository) Record(ctx context.Context, event *domain.BillingEvent) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO billing_events (id, type, payload, created_at, received_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		event.ID,
		event.Type,
		string(event.Payload),
		formatTime(event.CreatedAt),
		formatTime(event.ReceivedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record billing event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (r *BillingEventRepository) List(ctx context.Context, limit int) ([]*domain.BillingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, payload, created_at, received_at
		FROM billing_events ORDER BY received_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing events: %w", err)
	}
	defer rows.Close()

	var events []*domain.BillingEvent
	for rows.Next() {
		var (
			e                     domain.BillingEvent
			payload               string
			createdAt, receivedAt string
		)
		if err := rows.Scan(&e.ID, &e.Type, &payload, &createdAt, &receivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan billing event: %w", err)
		}
		e.Payload = []byte(payload)
		e.CreatedAt = parseTime(createdAt)
		e.ReceivedAt = parseTime(receivedAt)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list billing events: %w", err)
	}
	return events, nil
}
