package idempotency

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	orderID   string
	expiresAt time.Time
}

// MemoryStore is the process-local twin of RedisStore.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]entry
	now  func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{keys: map[string]entry{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.keys[key]; ok && s.now().Before(e.expiresAt) {
		return e.orderID, false, nil
	}
	s.keys[key] = entry{expiresAt: s.now().Add(ttl)}
	return "", true, nil
}

func (s *MemoryStore) Complete(ctx context.Context, key, orderID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = entry{orderID: orderID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
