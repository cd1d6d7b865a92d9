package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-ledger-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// CachedLookup is a read-through redis cache in front of product lookups.
// Locations and customers go straight to the wrapped Lookup. Redis failures
// degrade to the wrapped Lookup.
type CachedLookup struct {
	Lookup
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewCachedLookup(inner Lookup, c *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *CachedLookup {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedLookup{Lookup: inner, cache: c, ttl: ttl, logger: log}
}

func productKey(tenantID, productID string) string {
	return fmt.Sprintf("catalog:product:%s:%s", tenantID, productID)
}

func (l *CachedLookup) FindProducts(ctx context.Context, tenantID string, productIDs []string) (map[string]model.Product, error) {
	if len(productIDs) == 0 {
		return map[string]model.Product{}, nil
	}

	// 1. Check Cache
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = productKey(tenantID, id)
	}
	found := make(map[string]model.Product, len(productIDs))
	missing := productIDs
	vals, err := l.cache.Client.MGet(ctx, keys...).Result()
	if err != nil {
		l.logger.Warn("catalog cache unavailable", zap.Error(err))
	} else {
		missing = nil
		for i, v := range vals {
			s, ok := v.(string)
			var p model.Product
			if ok && json.Unmarshal([]byte(s), &p) == nil {
				found[productIDs[i]] = p
				continue
			}
			missing = append(missing, productIDs[i])
		}
	}
	if len(missing) == 0 {
		return found, nil
	}

	// 2. Load misses
	loaded, err := l.Lookup.FindProducts(ctx, tenantID, missing)
	if err != nil {
		return nil, err
	}

	// 3. Set Cache
	pipe := l.cache.Client.Pipeline()
	for id, p := range loaded {
		found[id] = p
		if data, err := json.Marshal(p); err == nil {
			pipe.Set(ctx, productKey(tenantID, id), data, l.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("failed to fill catalog cache", zap.Error(err))
	}
	return found, nil
}

// Invalidate drops cached products so the next lookup reads through.
func (l *CachedLookup) Invalidate(ctx context.Context, tenantID string, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = productKey(tenantID, id)
	}
	return l.cache.Client.Del(ctx, keys...).Err()
}
