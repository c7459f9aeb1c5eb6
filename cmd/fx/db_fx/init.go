package db_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tourplanner/internal/config"
	"tourplanner/internal/infra"
	"tourplanner/internal/repositories"
)

var Module = fx.Provide(
	provideDB,
	repositories.NewCityRepository,
	repositories.NewTourRepository,
	repositories.NewPaymentRepository,
	repositories.NewUserPreferenceRepository,
)

func provideDB(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db, logger)
			return nil
		},
	})
	return db, nil
}
