package infra

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tourplanner/internal/config"
	"tourplanner/internal/models/db_models"
)

func InitPostgresql(cfg config.Config, logger *zap.Logger) (*gorm.DB, error) {
	connectionPool, err := gorm.Open(postgres.Open(cfg.Postgres.URL), &gorm.Config{})
	if err != nil {
		logger.Error("Error connecting to database", zap.Error(err))
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.Postgres.AutoMigrate {
		if err := connectionPool.AutoMigrate(db_models.All()...); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		logger.Info("Postgres schema migrated")
	}

	return connectionPool, nil
}

func ClosePostgresql(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
	} else {
		logger.Info("PostgreSQL database connection closed successfully")
	}
}

func PingPostgresql(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
