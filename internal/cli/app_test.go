package cli

import (
	"context"
	"testing"

	"github.com/emiliopalmerini/authorsite/internal/adapters/turso"
	"github.com/emiliopalmerini/authorsite/internal/infrastructure/config"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

func TestAppContextFieldTypes(t *testing.T) {
	// Compile-time verification that AppContext uses port interfaces.
	var a AppContext
	var r turso.Repositories
	var _ ports.ExperimentRepository = r.Experiments     //nolint:staticcheck
	var _ ports.LeadRepository = r.Leads                 //nolint:staticcheck
	var _ ports.BillingEventRepository = r.BillingEvents //nolint:staticcheck
	var _ ports.StatsRepository = r.Stats                //nolint:staticcheck
	var _ ports.MetricsExporter = a.Metrics              //nolint:staticcheck
	var _ ports.RateLimiter = a.Limiter                  //nolint:staticcheck
	var _ ports.Logger = a.Logger                        //nolint:staticcheck
}

func TestAppContextClose_Empty(t *testing.T) {
	a := &AppContext{}
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("Close() on empty context should not error, got: %v", err)
	}
}

func TestNewMetricsExporter_DisabledFallsBackToNoOp(t *testing.T) {
	exp := newMetricsExporter(context.Background(), config.Telemetry{Enabled: false}, nil)
	if exp == nil {
		t.Fatal("expected a no-op exporter")
	}
	if err := exp.RecordLead(context.Background(), "landing", "footer"); err != nil {
		t.Errorf("no-op exporter returned error: %v", err)
	}
}
