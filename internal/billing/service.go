package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

type webhookEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
}

// Service verifies and records payment provider webhooks.
type Service struct {
	repo      ports.BillingEventRepository
	metrics   ports.MetricsExporter
	logger    ports.Logger
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewService(repo ports.BillingEventRepository, metrics ports.MetricsExporter, logger ports.Logger, secret string, tolerance time.Duration) *Service {
	return &Service{
		repo:      repo,
		metrics:   metrics,
		logger:    logger,
		secret:    secret,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// HandleWebhook verifies the signature, then stores the event. Replayed
// events are accepted and not stored again.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (*domain.BillingEvent, error) {
	if s.secret == "" {
		return nil, fmt.Errorf("%w: webhook secret is not configured", domain.ErrInvalidOperation)
	}

	if err := VerifySignature(payload, signatureHeader, s.secret, s.tolerance, s.now()); err != nil {
		s.logger.Warn("rejected webhook", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	var evt webhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: decode webhook event: %v", domain.ErrInvalidArgument, err)
	}
	if strings.TrimSpace(evt.ID) == "" || strings.TrimSpace(evt.Type) == "" {
		return nil, fmt.Errorf("%w: webhook event requires id and type", domain.ErrInvalidArgument)
	}

	event := &domain.BillingEvent{
		ID:         evt.ID,
		Type:       evt.Type,
		Payload:    payload,
		CreatedAt:  time.Unix(evt.Created, 0).UTC(),
		ReceivedAt: s.now().UTC(),
	}

	isNew, err := s.repo.Record(ctx, event)
	if err != nil {
		return nil, err
	}
	if !isNew {
		s.logger.Debug("duplicate webhook ignored", "id", event.ID, "type", event.Type)
		return event, nil
	}

	if err := s.metrics.RecordBillingEvent(ctx, event.Type); err != nil {
		s.logger.Warn("failed to record billing metric", "error", err)
	}
	s.logger.Info("billing event recorded", "id", event.ID, "type", event.Type)
	return event, nil
}
