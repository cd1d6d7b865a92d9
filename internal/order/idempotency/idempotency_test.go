package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/order"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ order.IdempotencyStore = (*MemoryStore)(nil)
	_ order.IdempotencyStore = (*RedisStore)(nil)
)

func exerciseStore(t *testing.T, s order.IdempotencyStore) {
	ctx := context.Background()
	key := "checkout:t1:" + uuid.NewString()

	_, reserved, err := s.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)

	orderID, reserved, err := s.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, orderID, "in-flight key has no order yet")

	require.NoError(t, s.Complete(ctx, key, "order-1", time.Minute))
	orderID, reserved, err = s.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-1", orderID)

	require.NoError(t, s.Release(ctx, key))
	_, reserved, err = s.Reserve(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreExpires(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(WithClock(func() time.Time { return now }))

	_, reserved, _ := s.Reserve(context.Background(), "k", time.Second)
	require.True(t, reserved)

	now = now.Add(2 * time.Second)
	_, reserved, _ = s.Reserve(context.Background(), "k", time.Second)
	assert.True(t, reserved)
}

func TestRedisStore(t *testing.T) {
	client, err := cache.NewRedisClient(&cache.Config{Addr: "localhost:6379"})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	exerciseStore(t, NewRedisStore(client))
}

func TestMemoryStoreCompleteExtendsReservation(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, reserved, _ := s.Reserve(ctx, "k", time.Second)
	require.True(t, reserved)
	require.NoError(t, s.Complete(ctx, "k", "order-1", time.Hour))

	now = now.Add(time.Minute)
	orderID, reserved, err := s.Reserve(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "order-1", orderID)
}
