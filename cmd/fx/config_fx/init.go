package config_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"tourplanner/internal/config"
	"tourplanner/internal/infra"
)

var Module = fx.Options(
	fx.Provide(config.Load, provideLogger),
	fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: logger.Named("fx")}
	}),
)

func provideLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	logger, err := infra.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	undo := zap.ReplaceGlobals(logger)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			undo()
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}
