// Package observability records request and webhook-outcome metrics through
// the OpenTelemetry metric API. Export is optional: with no OTLP endpoint
// configured the instruments still exist but nothing leaves the process.
package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config configures the metrics provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// OTLPEndpoint is a gRPC collector address, e.g. "localhost:4317".
	// Empty disables export.
	OTLPEndpoint string
}

// Metrics holds the service's instruments. A nil *Metrics is valid and
// records nothing, which keeps handler wiring simple in tests.
type Metrics struct {
	httpRequests    metric.Int64Counter
	webhookOutcomes metric.Int64Counter
	latency         metric.Float64Histogram
}

// New builds the meter provider and instruments. The returned shutdown
// function flushes any pending export batches.
func New(ctx context.Context, cfg Config) (*Metrics, func(context.Context) error, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(cfg.ServiceName)

	m := &Metrics{}
	if m.httpRequests, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total HTTP requests"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create http_requests_total: %w", err)
	}
	if m.webhookOutcomes, err = meter.Int64Counter("webhook_requests_total",
		metric.WithDescription("Total webhook processing outcomes"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create webhook_requests_total: %w", err)
	}
	if m.latency, err = meter.Float64Histogram("request_latency_seconds",
		metric.WithDescription("Request latency in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, nil, fmt.Errorf("failed to create request_latency_seconds: %w", err)
	}

	return m, provider.Shutdown, nil
}

// RecordHTTPRequest counts one finished request and observes its latency.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.String("status", strconv.Itoa(status)),
	))
	m.latency.Record(ctx, latency.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
	))
}

// RecordWebhookOutcome counts one ingestion outcome: created, duplicate,
// invalid_signature, validation_error or store_error.
func (m *Metrics) RecordWebhookOutcome(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.webhookOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}
