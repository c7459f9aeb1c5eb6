// pkg/memcache/leases.go
package mem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LeaseStore hands out exclusive, expiring claims on a key.
type LeaseStore interface {
	// Acquire returns the holder token, or "" when the key is already held and not
	// expired.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Release frees key only while it is still held under token. A lease that expired
	// and was taken by someone else is left alone.
	Release(ctx context.Context, key, token string) error
}

type lease struct {
	token     string
	expiresAt time.Time
}

type Leases struct {
	mu   sync.Mutex
	data map[string]lease
	now  func() time.Time
}

func NewLeases() *Leases {
	return &Leases{
		data: make(map[string]lease),
		now:  time.Now,
	}
}

func (s *Leases) Acquire(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.data[key]; ok && s.now().Before(l.expiresAt) {
		return "", nil
	}
	token := uuid.NewString()
	s.data[key] = lease{token: token, expiresAt: s.now().Add(ttl)}
	return token, nil
}

func (s *Leases) Release(_ context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.data[key]; ok && l.token == token {
		delete(s.data, key)
	}
	return nil
}

// Held reports whether key is currently claimed.
func (s *Leases) Held(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.data[key]
	if !ok {
		return false
	}
	if !s.now().Before(l.expiresAt) {
		delete(s.data, key) // cleanup expired
		return false
	}
	return true
}
