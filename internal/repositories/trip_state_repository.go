package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"tourplanner/internal/itinerary"
)

// TripStateRepository stores trip sessions as whole values. Writes are last-write-wins.
// Get returns nil, nil for unknown or expired sessions.
type TripStateRepository interface {
	Get(ctx context.Context, tripID string) (*itinerary.TripSession, error)
	Set(ctx context.Context, session *itinerary.TripSession) error
	Delete(ctx context.Context, tripID string) error
}

const tripKeyPrefix = "trip:"

type redisTripStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTripStateRepository(client *redis.Client, ttl time.Duration) TripStateRepository {
	return &redisTripStateRepository{client: client, ttl: ttl}
}

func (r *redisTripStateRepository) Get(ctx context.Context, tripID string) (*itinerary.TripSession, error) {
	raw, err := r.client.Get(ctx, tripKeyPrefix+tripID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get trip %s: %w", tripID, err)
	}
	return decodeSession(raw)
}

func (r *redisTripStateRepository) Set(ctx context.Context, session *itinerary.TripSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode trip %s: %w", session.ID, err)
	}
	if err := r.client.Set(ctx, tripKeyPrefix+session.ID, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set trip %s: %w", session.ID, err)
	}
	return nil
}

func (r *redisTripStateRepository) Delete(ctx context.Context, tripID string) error {
	return r.client.Del(ctx, tripKeyPrefix+tripID).Err()
}

// memoryTripStateRepository keeps encoded sessions so callers never share pointers.
type memoryTripStateRepository struct {
	store *cache.Cache
	ttl   time.Duration
}

func NewMemoryTripStateRepository(ttl time.Duration) TripStateRepository {
	return &memoryTripStateRepository{
		store: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (m *memoryTripStateRepository) Get(_ context.Context, tripID string) (*itinerary.TripSession, error) {
	v, ok := m.store.Get(tripKeyPrefix + tripID)
	if !ok {
		return nil, nil
	}
	return decodeSession(v.([]byte))
}

func (m *memoryTripStateRepository) Set(_ context.Context, session *itinerary.TripSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode trip %s: %w", session.ID, err)
	}
	m.store.Set(tripKeyPrefix+session.ID, raw, m.ttl)
	return nil
}

func (m *memoryTripStateRepository) Delete(_ context.Context, tripID string) error {
	m.store.Delete(tripKeyPrefix + tripID)
	return nil
}

func decodeSession(raw []byte) (*itinerary.TripSession, error) {
	var s itinerary.TripSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode trip session: %w", err)
	}
	return &s, nil
}
