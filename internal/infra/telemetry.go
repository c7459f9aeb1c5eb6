package infra

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"tourplanner/internal/config"
)

type TelemetryShutdown func(context.Context) error

// InitTelemetry installs the global tracer and meter providers. Metrics are exported
// through the default prometheus registry. Traces go to the OTLP endpoint when one is
// configured.
func InitTelemetry(cfg config.Config, logger *zap.Logger) (TelemetryShutdown, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.Telemetry.ServiceName),
	)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Telemetry.OTLPEndpoint != "" {
		exporter, err := otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpoint(cfg.Telemetry.OTLPEndpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			logger.Warn("OTLP trace exporter unavailable, spans stay local", zap.Error(err))
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
		}
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	)
	otel.SetMeterProvider(mp)
	logger.Info("Telemetry initialized", zap.String("service", cfg.Telemetry.ServiceName))

	return func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}
