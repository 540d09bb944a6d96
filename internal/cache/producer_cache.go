package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vaudterroir/api/internal/models"
)

// mapKey caches the unfiltered approved-producer listing, which is what
// the map loads on every visit. Filtered listings always hit the database.
const mapKey = "producers:map"

// ProducerCache caches the public map listing in Redis. All failures are
// soft: a broken cache degrades to database reads, never to errors.
type ProducerCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewProducerCache creates a new ProducerCache. The TTL bounds staleness
// if an invalidation is ever missed.
func NewProducerCache(redis *RedisClient, ttl time.Duration) *ProducerCache {
	return &ProducerCache{redis: redis, ttl: ttl}
}

// GetMap returns the cached map listing, or ok=false on miss or error.
func (c *ProducerCache) GetMap(ctx context.Context) ([]*models.Producer, bool) {
	raw, err := c.redis.Get(ctx, mapKey)
	if err != nil {
		return nil, false
	}
	var producers []*models.Producer
	if err := json.Unmarshal([]byte(raw), &producers); err != nil {
		log.Warn().Err(err).Msg("corrupt map cache entry, dropping it")
		_ = c.redis.Delete(ctx, mapKey)
		return nil, false
	}
	return producers, true
}

// SetMap stores the map listing.
func (c *ProducerCache) SetMap(ctx context.Context, producers []*models.Producer) error {
	raw, err := json.Marshal(producers)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, mapKey, string(raw), c.ttl)
}

// InvalidateMap drops the cached listing after a mutation changed what the
// public map should show.
func (c *ProducerCache) InvalidateMap(ctx context.Context) {
	if err := c.redis.Delete(ctx, mapKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate map cache")
	}
}
