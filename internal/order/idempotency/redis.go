package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const pending = "pending"

// RedisStore keeps checkout keys in redis. A key holds "pending" while the
// first request runs and the order id once it committed.
type RedisStore struct {
	cache *cache.RedisClient
}

func NewRedisStore(c *cache.RedisClient) *RedisStore {
	return &RedisStore{cache: c}
}

func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	ok, err := s.cache.Client.SetNX(ctx, key, pending, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := s.cache.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; treat as still in flight
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read idempotency key: %w", err)
	}
	if val == pending {
		return "", false, nil
	}
	return val, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return s.cache.Client.Set(ctx, key, orderID, ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.cache.Client.Del(ctx, key).Err()
}
