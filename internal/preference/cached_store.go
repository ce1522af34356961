package preference

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStore is a read-through Redis cache in front of another Store.
// The gate runs on every dispatch, so preference reads dominate traffic;
// a short TTL keeps settings changes visible within minutes.
//
// Cache failures fall back to the underlying store: Redis being down
// degrades latency, never correctness.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) Get(ctx context.Context, userID string) (*Preferences, error) {
	key := "prefs:" + userID

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var p Preferences
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		// corrupt entry: drop it and fall through to the source of truth
		c.client.Del(ctx, key)
	}

	p, err := c.next.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Debug("preference cache write failed", zap.Error(err))
		}
	}
	return p, nil
}

var _ Store = (*CachedStore)(nil)
