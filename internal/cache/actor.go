package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardvault/cardvault/internal/model"
)

const (
	// actorCachePrefix is the Redis key prefix for actor cache entries.
	actorCachePrefix = "auth:actor:"
	// actorCacheTTL bounds how long a revoked or rotated key keeps
	// authenticating from cache.
	actorCacheTTL = 5 * time.Minute
)

// cachedActor is the actor representation stored in Redis.
type cachedActor struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// GetActor retrieves a cached actor by cache key.
// Returns nil on a cache miss.
func (c *Cache) GetActor(ctx context.Context, cacheKey string) (*model.Actor, error) {
	key := actorCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached cachedActor
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Actor{
		UserID: cached.UserID,
		Email:  cached.Email,
		Roles:  cached.Roles,
	}, nil
}

// SetActor caches an authenticated actor.
func (c *Cache) SetActor(ctx context.Context, cacheKey string, actor *model.Actor) error {
	key := actorCachePrefix + cacheKey

	cached := cachedActor{
		UserID: actor.UserID,
		Email:  actor.Email,
		Roles:  actor.Roles,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal actor: %w", err)
	}

	return c.client.Set(ctx, key, data, actorCacheTTL).Err()
}

// DeleteActor removes a cached actor.
// Used when a key is rotated or the user is deleted.
func (c *Cache) DeleteActor(ctx context.Context, cacheKey string) error {
	key := actorCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
