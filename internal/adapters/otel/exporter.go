package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/authorsite/internal/infrastructure/config"
	"github.com/emiliopalmerini/authorsite/internal/ports"
)

const (
	serviceName    = "authorsite"
	serviceVersion = "1.0.0"
)

var _ ports.MetricsExporter = (*Exporter)(nil)

// Exporter exports platform metrics to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	exposures     metric.Int64Counter
	leads         metric.Int64Counter
	billingEvents metric.Int64Counter
}

// NewExporter creates an exporter that pushes to the configured OTLP gRPC endpoint.
func NewExporter(ctx context.Context, cfg config.Telemetry) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

// NewExporterWithReader creates an exporter backed by the given reader, such as
// a manual reader in tests.
func NewExporterWithReader(reader sdkmetric.Reader) (*Exporter, error) {
	return newExporter(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	exposures, err := meter.Int64Counter(
		"authorsite_experiment_exposures_total",
		metric.WithDescription("Visitors assigned to an experiment variant"),
		metric.WithUnit("{exposure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exposures counter: %w", err)
	}

	leads, err := meter.Int64Counter(
		"authorsite_leads_total",
		metric.WithDescription("Leads captured from landing pages"),
		metric.WithUnit("{lead}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating leads counter: %w", err)
	}

	billingEvents, err := meter.Int64Counter(
		"authorsite_billing_events_total",
		metric.WithDescription("Verified billing webhook events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating billing events counter: %w", err)
	}

	return &Exporter{
		provider:      provider,
		exposures:     exposures,
		leads:         leads,
		billingEvents: billingEvents,
	}, nil
}

func (e *Exporter) RecordExposure(ctx context.Context, x ports.Exposure) error {
	e.exposures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("experiment_id", x.ExperimentID),
		attribute.String("experiment_name", x.ExperimentName),
		attribute.String("variant_id", x.VariantID),
		attribute.String("page", x.Page),
	))
	return nil
}

func (e *Exporter) RecordLead(ctx context.Context, page, source string) error {
	e.leads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("page", page),
		attribute.String("source", source),
	))
	return nil
}

func (e *Exporter) RecordBillingEvent(ctx context.Context, eventType string) error {
	e.billingEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
	return nil
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
