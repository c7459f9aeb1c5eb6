package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tourplanner/internal/infra"
	"tourplanner/internal/models/response_models"
)

type HealthServiceInterface interface {
	Check(ctx context.Context) response_models.HealthResponse
}

type HealthService struct {
	provider ProviderClient
	db       *gorm.DB
	redis    *redis.Client
}

// NewHealthService accepts nil db or redis for deployments running without them.
func NewHealthService(provider ProviderClient, db *gorm.DB, redisClient *redis.Client) HealthServiceInterface {
	return &HealthService{provider: provider, db: db, redis: redisClient}
}

// Check reports "ok" only when every configured component answers. The provider being
// down degrades the service rather than failing it, since schedules fall back.
func (h *HealthService) Check(ctx context.Context) response_models.HealthResponse {
	out := response_models.HealthResponse{Status: "ok", Components: map[string]string{}}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if h.db != nil {
		if err := infra.PingPostgresql(ctx, h.db); err != nil {
			out.Components["postgres"] = err.Error()
			out.Status = "error"
		} else {
			out.Components["postgres"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			out.Components["redis"] = err.Error()
			out.Status = "error"
		} else {
			out.Components["redis"] = "ok"
		}
	}

	info, err := h.provider.Health(ctx)
	if err != nil {
		out.Components["provider"] = err.Error()
		if out.Status == "ok" {
			out.Status = "degraded"
		}
	} else {
		out.Components["provider"] = "ok"
		out.Provider = info
	}
	return out
}
