package otel

import (
	"context"

	"github.com/emiliopalmerini/authorsite/internal/ports"
)

var _ ports.MetricsExporter = (*NoOpExporter)(nil)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordExposure(ctx context.Context, x ports.Exposure) error { return nil }

func (e *NoOpExporter) RecordLead(ctx context.Context, page, source string) error { return nil }

func (e *NoOpExporter) RecordBillingEvent(ctx context.Context, eventType string) error { return nil }

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
