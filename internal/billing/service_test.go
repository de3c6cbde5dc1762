package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/authorsite/internal/adapters/logging"
	"github.com/emiliopalmerini/authorsite/internal/adapters/otel"
	"github.com/emiliopalmerini/authorsite/internal/domain"
)

type billingSpy struct {
	otel.NoOpExporter
	types []string
}

func (s *billingSpy) RecordBillingEvent(ctx context.Context, eventType string) error {
	s.types = append(s.types, eventType)
	return nil
}

var webhookNow = time.Unix(1700000100, 0)

func newTestService(repo *MockRepository, spy *billingSpy) *Service {
	svc := NewService(repo, spy, logging.NewNop(), testSecret, 5*time.Minute)
	svc.now = func() time.Time { return webhookNow }
	return svc
}

func TestService_HandleWebhook(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","created":1700000000,"data":{}}`)
	var recorded *domain.BillingEvent
	repo := &MockRepository{
		RecordFunc: func(ctx context.Context, e *domain.BillingEvent) (bool, error) {
			recorded = e
			return true, nil
		},
	}
	spy := &billingSpy{}
	svc := newTestService(repo, spy)

	event, err := svc.HandleWebhook(context.Background(), payload, SignPayload(payload, testSecret, time.Unix(1700000000, 0)))
	require.NoError(t, err)
	assert.Same(t, recorded, event)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, payload, event.Payload)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.CreatedAt)
	assert.Equal(t, webhookNow.UTC(), event.ReceivedAt)
	assert.Equal(t, []string{"checkout.session.completed"}, spy.types)
}

func TestService_HandleWebhook_Duplicate(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid","created":1700000000}`)
	repo := &MockRepository{
		RecordFunc: func(ctx context.Context, e *domain.BillingEvent) (bool, error) { return false, nil },
	}
	spy := &billingSpy{}
	svc := newTestService(repo, spy)

	event, err := svc.HandleWebhook(context.Background(), payload, SignPayload(payload, testSecret, webhookNow))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Empty(t, spy.types, "replayed events are not counted")
}

func TestService_HandleWebhook_Rejections(t *testing.T) {
	good := []byte(`{"id":"evt_1","type":"invoice.paid","created":1700000000}`)
	noID := []byte(`{"type":"invoice.paid"}`)
	notJSON := []byte(`not json`)

	tests := []struct {
		name    string
		payload []byte
		header  string
		wantErr error
	}{
		{"missing signature", good, "", ErrMissingHeader},
		{"bad signature", good, SignPayload(good, "wrong", webhookNow), ErrNoValidSignature},
		{"stale", good, SignPayload(good, testSecret, webhookNow.Add(-time.Hour)), ErrTooOld},
		{"missing id", noID, SignPayload(noID, testSecret, webhookNow), domain.ErrInvalidArgument},
		{"invalid json", notJSON, SignPayload(notJSON, testSecret, webhookNow), domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{
				RecordFunc: func(ctx context.Context, e *domain.BillingEvent) (bool, error) {
					t.Fatal("rejected webhooks must not be stored")
					return false, nil
				},
			}
			_, err := newTestService(repo, &billingSpy{}).HandleWebhook(context.Background(), tt.payload, tt.header)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestService_HandleWebhook_NoSecret(t *testing.T) {
	svc := NewService(&MockRepository{}, otel.NewNoOpExporter(), logging.NewNop(), "", time.Minute)

	_, err := svc.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=00")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestService_HandleWebhook_RepositoryError(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid","created":1700000000}`)
	dbErr := errors.New("disk full")
	repo := &MockRepository{
		RecordFunc: func(ctx context.Context, e *domain.BillingEvent) (bool, error) { return false, dbErr },
	}

	_, err := newTestService(repo, &billingSpy{}).HandleWebhook(context.Background(), payload, SignPayload(payload, testSecret, webhookNow))
	assert.ErrorIs(t, err, dbErr)
}
