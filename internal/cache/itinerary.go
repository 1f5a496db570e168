package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"railroute/internal/domain"
)

// ItineraryCache checks the local LRU first and Redis second. Keys carry the
// network version, so entries from a replaced network are never served.
type ItineraryCache struct {
	local  *LocalCache
	redis  *RedisCache
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewItineraryCache builds a two-level cache. redis may be nil.
func NewItineraryCache(local *LocalCache, redis *RedisCache, ttl time.Duration, logger *slog.Logger) *ItineraryCache {
	return &ItineraryCache{
		local:  local,
		redis:  redis,
		ttl:    ttl,
		logger: logger.With("component", "itinerary_cache"),
	}
}

func (c *ItineraryCache) GetItinerary(ctx context.Context, version, start, end string) (domain.Itinerary, bool) {
	key := KeyItinerary(version, start, end)

	if it, ok := c.local.Get(key); ok {
		c.hits.Add(1)
		return it, true
	}

	if c.redis != nil {
		it, found, err := c.redis.Itinerary(ctx, version, start, end)
		if err != nil {
			c.logger.Debug("redis itinerary lookup failed", "key", key, "error", err)
		}
		if found {
			c.local.Set(key, it)
			c.hits.Add(1)
			return it, true
		}
	}

	c.misses.Add(1)
	return domain.Itinerary{}, false
}

func (c *ItineraryCache) SetItinerary(ctx context.Context, version, start, end string, it domain.Itinerary) {
	key := KeyItinerary(version, start, end)
	c.local.Set(key, it)

	if c.redis != nil {
		if err := c.redis.StoreItinerary(ctx, version, start, end, it, c.ttl); err != nil {
			c.logger.Debug("redis itinerary store failed", "key", key, "error", err)
		}
	}
}

// Invalidate drops every local entry. Redis entries expire on their own TTL.
func (c *ItineraryCache) Invalidate() {
	c.local.Purge()
}

func (c *ItineraryCache) Hits() int64   { return c.hits.Load() }
func (c *ItineraryCache) Misses() int64 { return c.misses.Load() }
