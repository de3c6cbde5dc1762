package ports

import "context"

// MetricsExporter exports platform events to an external observability system.
type MetricsExporter interface {
	// RecordExposure counts one visitor exposed to a variant of an experiment.
	RecordExposure(ctx context.Context, e Exposure) error
	// RecordLead counts a captured lead by source page.
	RecordLead(ctx context.Context, page, source string) error
	// RecordBillingEvent counts a verified billing webhook by event type.
	RecordBillingEvent(ctx context.Context, eventType string) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// Exposure identifies an experiment variant shown on a page.
type Exposure struct {
	ExperimentID   string
	ExperimentName string
	VariantID      string
	Page           string
}
