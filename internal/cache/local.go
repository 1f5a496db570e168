package cache

import (
	"time"

	"github.com/bluele/gcache"

	"railroute/internal/domain"
)

// LocalCache is an in-process LRU of compiled itineraries.
type LocalCache struct {
	c gcache.Cache
}

// NewLocalCache holds up to size entries. A non-positive ttl keeps entries
// until they are evicted.
func NewLocalCache(size int, ttl time.Duration) *LocalCache {
	if size <= 0 {
		size = 1
	}
	b := gcache.New(size).LRU()
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &LocalCache{c: b.Build()}
}

func (l *LocalCache) Get(key string) (domain.Itinerary, bool) {
	v, err := l.c.Get(key)
	if err != nil {
		return domain.Itinerary{}, false
	}
	it, ok := v.(domain.Itinerary)
	return it, ok
}

func (l *LocalCache) Set(key string, it domain.Itinerary) {
	_ = l.c.Set(key, it)
}

func (l *LocalCache) Purge() {
	l.c.Purge()
}

func (l *LocalCache) Len() int {
	return l.c.Len(true)
}
