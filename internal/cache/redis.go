package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/redis/go-redis/v9"

	"railroute/internal/domain"
)

// RedisCache shares compiled itineraries and published network snapshots
// between replicas. All keys live under the "railroute:" prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCache connects and pings Redis.
func NewRedisCache(ctx context.Context, addr, password string, db int, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "railroute:",
		logger: logger.With("component", "redis_cache"),
	}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Itinerary returns the itinerary stored for a query on one network version.
func (c *RedisCache) Itinerary(ctx context.Context, version, start, end string) (domain.Itinerary, bool, error) {
	key := KeyItinerary(version, start, end)
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Itinerary{}, false, nil
	}
	if err != nil {
		return domain.Itinerary{}, false, fmt.Errorf("get %s: %w", key, err)
	}

	var it domain.Itinerary
	if err := json.Unmarshal(data, &it); err != nil {
		return domain.Itinerary{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if it.Steps == nil {
		it.Steps = []domain.Leg{}
	}
	return it, true, nil
}

func (c *RedisCache) StoreItinerary(ctx context.Context, version, start, end string, it domain.Itinerary, ttl time.Duration) error {
	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encode itinerary: %w", err)
	}
	return c.client.Set(ctx, c.key(KeyItinerary(version, start, end)), data, ttl).Err()
}

// PublishedVersion returns the network version last published by any replica,
// or "" when none has been.
func (c *RedisCache) PublishedVersion(ctx context.Context) (string, error) {
	v, err := c.client.Get(ctx, c.key(KeyNetworkVersion)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// PublishSnapshot stores the gzip'd station and line payloads of a version and
// points the version key at it in a single MULTI/EXEC.
func (c *RedisCache) PublishSnapshot(ctx context.Context, stations StationsPayload, lines LinesPayload, ttl time.Duration) (int, error) {
	stationsData, err := encodePayload(stations)
	if err != nil {
		return 0, fmt.Errorf("encode stations: %w", err)
	}
	linesData, err := encodePayload(lines)
	if err != nil {
		return 0, fmt.Errorf("encode lines: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(KeyStations(stations.Version)), stationsData, ttl)
		pipe.Set(ctx, c.key(KeyLines(lines.Version)), linesData, ttl)
		pipe.Set(ctx, c.key(KeyNetworkVersion), stations.Version, 0)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("publish snapshot %s: %w", stations.Version, err)
	}
	return len(stationsData) + len(linesData), nil
}

// DropSnapshot deletes the payloads of a superseded version.
func (c *RedisCache) DropSnapshot(ctx context.Context, version string) error {
	return c.client.Del(ctx, c.key(KeyStations(version)), c.key(KeyLines(version))).Err()
}

func encodePayload(v any) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(v); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
