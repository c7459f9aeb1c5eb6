package infra

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AppMetrics holds the instruments the services record into.
type AppMetrics struct {
	ProviderRequests   metric.Int64Counter
	ProviderDuration   metric.Float64Histogram
	SchedulesGenerated metric.Int64Counter
	FinalToursBuilt    metric.Int64Counter
}

func NewAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var err error

	if m.ProviderRequests, err = meter.Int64Counter(
		"provider_requests_total",
		metric.WithDescription("Calls made to external providers"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("provider_requests_total: %w", err)
	}
	if m.ProviderDuration, err = meter.Float64Histogram(
		"provider_request_duration_seconds",
		metric.WithDescription("Latency of external provider calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("provider_request_duration_seconds: %w", err)
	}
	if m.SchedulesGenerated, err = meter.Int64Counter(
		"day_schedules_generated_total",
		metric.WithDescription("Day schedules produced, by source"),
		metric.WithUnit("{schedule}"),
	); err != nil {
		return nil, fmt.Errorf("day_schedules_generated_total: %w", err)
	}
	if m.FinalToursBuilt, err = meter.Int64Counter(
		"final_tours_built_total",
		metric.WithDescription("Final tours assembled and stored"),
		metric.WithUnit("{tour}"),
	); err != nil {
		return nil, fmt.Errorf("final_tours_built_total: %w", err)
	}
	return m, nil
}

// NoopMetrics is used by tests and tools that run without a meter provider.
func NoopMetrics() *AppMetrics {
	m, _ := NewAppMetrics(noop.NewMeterProvider().Meter("noop"))
	return m
}

func (m *AppMetrics) ProviderCall(ctx context.Context, endpoint, outcome string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	m.ProviderRequests.Add(ctx, 1, attrs)
	m.ProviderDuration.Record(ctx, seconds, attrs)
}

func (m *AppMetrics) ScheduleGenerated(ctx context.Context, source string) {
	m.SchedulesGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (m *AppMetrics) TourBuilt(ctx context.Context) {
	m.FinalToursBuilt.Add(ctx, 1)
}
