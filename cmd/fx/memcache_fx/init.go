package memcache_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourplanner/internal/config"
	"tourplanner/internal/infra"
	"tourplanner/internal/repositories"
	mem "tourplanner/pkg/memcache"
)

const memoryBackend = "memory"

var Module = fx.Provide(provideRedis, provideTripState, provideLeases)

// provideRedis returns a nil client when trip state is kept in process memory.
func provideRedis(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.TripState.Backend == memoryBackend {
		logger.Warn("Trip state is kept in memory, sessions will not survive a restart")
		return nil, nil
	}

	client, err := infra.NewRedisClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func provideTripState(cfg config.Config, client *redis.Client) repositories.TripStateRepository {
	if client == nil {
		return repositories.NewMemoryTripStateRepository(cfg.TripState.TTL)
	}
	return repositories.NewRedisTripStateRepository(client, cfg.TripState.TTL)
}

func provideLeases(client *redis.Client) mem.LeaseStore {
	if client == nil {
		return mem.NewLeases()
	}
	return repositories.NewRedisLeaseStore(client)
}
