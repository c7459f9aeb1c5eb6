package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	mem "tourplanner/pkg/memcache"
)

const leaseKeyPrefix = "lease:"

// releaseLease deletes the key only when it still holds the caller's token.
var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisLeaseStore shares generation leases between service instances.
type redisLeaseStore struct {
	client *redis.Client
}

func NewRedisLeaseStore(client *redis.Client) mem.LeaseStore {
	return &redisLeaseStore{client: client}
}

func (r *redisLeaseStore) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, leaseKeyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis acquire lease %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (r *redisLeaseStore) Release(ctx context.Context, key, token string) error {
	if err := releaseLease.Run(ctx, r.client, []string{leaseKeyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("redis release lease %s: %w", key, err)
	}
	return nil
}
