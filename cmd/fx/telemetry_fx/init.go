package telemetry_fx

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourplanner/internal/config"
	"tourplanner/internal/infra"
)

var Module = fx.Provide(provideTelemetry, provideMetrics)

func provideTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (infra.TelemetryShutdown, error) {
	shutdown, err := infra.InitTelemetry(cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(shutdown))
	return shutdown, nil
}

// provideMetrics takes the shutdown func only so the meter provider is installed first.
func provideMetrics(cfg config.Config, _ infra.TelemetryShutdown) (*infra.AppMetrics, error) {
	return infra.NewAppMetrics(otel.Meter(cfg.Telemetry.ServiceName))
}
