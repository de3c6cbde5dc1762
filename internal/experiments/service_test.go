package experiments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/emiliopalmerini/authorsite/internal/adapters/logging"
	"github.com/emiliopalmerini/authorsite/internal/adapters/otel"
	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

type exposureSpy struct {
	otel.NoOpExporter
	exposures []ports.Exposure
	err       error
}

func (s *exposureSpy) RecordExposure(ctx context.Context, x ports.Exposure) error {
	s.exposures = append(s.exposures, x)
	return s.err
}

func heroExperiment() *domain.Experiment {
	return &domain.Experiment{
		ID:       "exp-hero",
		Name:     "hero-copy",
		Page:     "landing",
		IsActive: true,
		Variants: []domain.ExperimentVariant{
			{ID: "control", Name: "Control", TrafficPercentage: 50, Config: domain.VariantConfig{"headline": domain.StringValue("Write your book")}},
			{ID: "bold", Name: "Bold", TrafficPercentage: 50, Config: domain.VariantConfig{"headline": domain.StringValue("Publish today")}},
		},
	}
}

func activeRepo(exps ...*domain.Experiment) *MockRepository {
	return &MockRepository{
		GetActiveByPageFunc: func(ctx context.Context, page string) ([]*domain.Experiment, error) {
			return exps, nil
		},
	}
}

func TestService_GetExperiments_InvalidRequest(t *testing.T) {
	svc := NewService(&MockRepository{}, otel.NewNoOpExporter(), logging.NewNop())

	tests := []struct {
		name string
		req  *GetExperimentsRequest
	}{
		{"nil request", nil},
		{"empty page", &GetExperimentsRequest{}},
		{"blank page", &GetExperimentsRequest{Page: "   ", UserID: "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetExperiments(context.Background(), tt.req)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestService_GetExperiments_UsesUserIDAsKey(t *testing.T) {
	exp := heroExperiment()
	var gotPage string
	repo := &MockRepository{
		GetActiveByPageFunc: func(ctx context.Context, page string) ([]*domain.Experiment, error) {
			gotPage = page
			return []*domain.Experiment{exp}, nil
		},
	}
	svc := NewService(repo, otel.NewNoOpExporter(), logging.NewNop())

	resp, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "reader-42"})
	require.NoError(t, err)

	assert.Equal(t, "landing", gotPage)
	assert.Equal(t, "reader-42", resp.SessionID)
	require.Len(t, resp.Experiments, 1)

	want, err := domain.AssignVariant(exp, "reader-42")
	require.NoError(t, err)
	got := resp.Experiments[0]
	assert.Equal(t, "exp-hero", got.ID)
	assert.Equal(t, "hero-copy", got.Name)
	assert.Equal(t, want.ID, got.Variant.ID)
	assert.Equal(t, want.Name, got.Variant.Name)
	assert.Equal(t, want.Config, got.Variant.Config)

	again, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "reader-42"})
	require.NoError(t, err)
	assert.Equal(t, got.Variant.ID, again.Experiments[0].Variant.ID)
}

func TestService_GetExperiments_AnonymousVisitorGetsFreshKey(t *testing.T) {
	svc := NewService(activeRepo(heroExperiment()), otel.NewNoOpExporter(), logging.NewNop())

	first, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing"})
	require.NoError(t, err)
	second, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "  "})
	require.NoError(t, err)

	_, err = uuid.Parse(first.SessionID)
	assert.NoError(t, err)
	_, err = uuid.Parse(second.SessionID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestService_GetExperiments_NoActiveExperiments(t *testing.T) {
	svc := NewService(&MockRepository{}, otel.NewNoOpExporter(), logging.NewNop())

	resp, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "about", UserID: "u"})
	require.NoError(t, err)
	require.NotNil(t, resp.Experiments)
	assert.Empty(t, resp.Experiments)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionId":"u","experiments":[]}`, string(body))
}

func TestService_GetExperiments_RepositoryErrorIsUnchanged(t *testing.T) {
	repoErr := errors.New("connection reset")
	repo := &MockRepository{
		GetActiveByPageFunc: func(ctx context.Context, page string) ([]*domain.Experiment, error) {
			return nil, repoErr
		},
	}
	svc := NewService(repo, otel.NewNoOpExporter(), logging.NewNop())

	resp, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing"})
	assert.Nil(t, resp)
	assert.Same(t, repoErr, err)
}

func TestService_GetExperiments_ExperimentWithoutVariants(t *testing.T) {
	empty := &domain.Experiment{ID: "e", Name: "empty", Page: "landing", IsActive: true}
	svc := NewService(activeRepo(empty), otel.NewNoOpExporter(), logging.NewNop())

	_, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "u"})
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestService_GetExperiments_NilExperimentIsInvalidArgument(t *testing.T) {
	svc := NewService(activeRepo(heroExperiment(), nil), otel.NewNoOpExporter(), logging.NewNop())

	var resp *GetExperimentsResponse
	var err error
	require.NotPanics(t, func() {
		resp, err = svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "u"})
	})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestService_GetExperiments_NilConfigBecomesEmptyObject(t *testing.T) {
	exp := &domain.Experiment{
		ID: "e", Name: "solo", Page: "landing", IsActive: true,
		Variants: []domain.ExperimentVariant{{ID: "only", Name: "Only", TrafficPercentage: 100}},
	}
	svc := NewService(activeRepo(exp), otel.NewNoOpExporter(), logging.NewNop())

	resp, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "u"})
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessionId":"u","experiments":[{"id":"e","name":"solo","variant":{"id":"only","name":"Only","config":{}}}]}`, string(body))
}

func TestService_GetExperiments_RecordsExposures(t *testing.T) {
	second := heroExperiment()
	second.ID, second.Name = "exp-cta", "cta-color"
	spy := &exposureSpy{}
	svc := NewService(activeRepo(heroExperiment(), second), spy, logging.NewNop())

	resp, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "u"})
	require.NoError(t, err)

	require.Len(t, spy.exposures, 2)
	for i, x := range spy.exposures {
		assert.Equal(t, resp.Experiments[i].ID, x.ExperimentID)
		assert.Equal(t, resp.Experiments[i].Variant.ID, x.VariantID)
		assert.Equal(t, "landing", x.Page)
	}
}

func TestService_GetExperiments_ExporterErrorIsNotReturned(t *testing.T) {
	spy := &exposureSpy{err: errors.New("collector unavailable")}
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(activeRepo(heroExperiment()), spy, logging.Wrap(zap.New(core)))

	resp, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "u"})
	require.NoError(t, err)
	assert.Len(t, resp.Experiments, 1)
	assert.Equal(t, 1, logs.FilterMessage("failed to record exposure").Len())
}

func TestService_GetExperiments_WarnsWhenTrafficExceeds100(t *testing.T) {
	exp := heroExperiment()
	exp.Variants[1].TrafficPercentage = 80
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(activeRepo(exp), otel.NewNoOpExporter(), logging.Wrap(zap.New(core)))

	resp, err := svc.GetExperiments(context.Background(), &GetExperimentsRequest{Page: "landing", UserID: "u"})
	require.NoError(t, err)
	assert.Len(t, resp.Experiments, 1)

	entries := logs.FilterMessage("experiment traffic exceeds 100 percent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hero-copy", entries[0].ContextMap()["experiment"])
}
