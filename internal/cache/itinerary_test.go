package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railroute/internal/domain"
	"railroute/internal/graph"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleItinerary() domain.Itinerary {
	return domain.Itinerary{
		TotalTime: 5,
		Steps: []domain.Leg{
			{Type: domain.LegRide, Line: "Red", From: "A", To: "C", Stops: 2, Time: 5},
		},
	}
}

func TestKeyItineraryEscapesNames(t *testing.T) {
	assert.Equal(t, "itinerary:v1:Siam+Square:Mo+Chit%3A2", KeyItinerary("v1", "Siam Square", "Mo Chit:2"))
	assert.NotEqual(t, KeyItinerary("v1", "A:B", "C"), KeyItinerary("v1", "A", "B:C"))
}

func TestLocalCache(t *testing.T) {
	c := NewLocalCache(2, time.Minute)

	c.Set("a", sampleItinerary())
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, sampleItinerary(), got)

	c.Set("b", domain.EmptyItinerary())
	c.Set("c", domain.EmptyItinerary())
	_, ok = c.Get("a")
	assert.False(t, ok, "least recently used entry is evicted")

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestLocalCacheWithoutTTL(t *testing.T) {
	c := NewLocalCache(4, 0)
	c.Set("a", sampleItinerary())

	_, ok := c.Get("a")
	assert.True(t, ok)
}

func TestItineraryCacheLocalOnly(t *testing.T) {
	ctx := context.Background()
	c := NewItineraryCache(NewLocalCache(16, time.Minute), nil, time.Minute, discardLogger())

	_, ok := c.GetItinerary(ctx, "v1", "A", "C")
	assert.False(t, ok)

	c.SetItinerary(ctx, "v1", "A", "C", sampleItinerary())
	got, ok := c.GetItinerary(ctx, "v1", "A", "C")
	require.True(t, ok)
	assert.Equal(t, sampleItinerary(), got)

	_, ok = c.GetItinerary(ctx, "v2", "A", "C")
	assert.False(t, ok, "entries are scoped to a network version")

	assert.Equal(t, int64(1), c.Hits())
	assert.Equal(t, int64(2), c.Misses())

	c.Invalidate()
	_, ok = c.GetItinerary(ctx, "v1", "A", "C")
	assert.False(t, ok)
}

func redisForTest(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rc, err := NewRedisCache(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 15, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc
}

func TestItineraryCacheRedisFallback(t *testing.T) {
	rc := redisForTest(t)
	ctx := context.Background()

	writer := NewItineraryCache(NewLocalCache(16, time.Minute), rc, time.Minute, discardLogger())
	reader := NewItineraryCache(NewLocalCache(16, time.Minute), rc, time.Minute, discardLogger())

	writer.SetItinerary(ctx, "test-version", "A", "Z", domain.EmptyItinerary())
	got, ok := reader.GetItinerary(ctx, "test-version", "A", "Z")
	require.True(t, ok)
	assert.NotNil(t, got.Steps)
	assert.Empty(t, got.Steps)
}

func readStations(t *testing.T, rc *RedisCache, version string) (StationsPayload, bool) {
	t.Helper()
	data, err := rc.client.Get(context.Background(), rc.key(KeyStations(version))).Bytes()
	if errors.Is(err, redis.Nil) {
		return StationsPayload{}, false
	}
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()

	var payload StationsPayload
	require.NoError(t, json.NewDecoder(zr).Decode(&payload))
	return payload, true
}

func TestCacheWarmer(t *testing.T) {
	rc := redisForTest(t)
	ctx := context.Background()

	build := func(stationB string) *graph.Network {
		net, _, err := graph.Build([]domain.Record{
			{Row: 2, StationA: "A", StationB: stationB, Line: "Red", Time: "1"},
		}, graph.BuildOptions{}, discardLogger())
		require.NoError(t, err)
		return net
	}
	first := build("B (North)")
	second := build("C")

	w := NewCacheWarmer(rc, time.Minute, discardLogger())
	require.NoError(t, w.Warm(ctx, first))

	version, err := rc.PublishedVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Version, version)

	payload, found := readStations(t, rc, first.Version)
	require.True(t, found)
	assert.Equal(t, []string{"A", "B"}, payload.Stations)

	require.NoError(t, w.Warm(ctx, second))
	_, found = readStations(t, rc, first.Version)
	assert.False(t, found, "the superseded snapshot is dropped")

	payload, found = readStations(t, rc, second.Version)
	require.True(t, found)
	assert.Equal(t, []string{"A", "C"}, payload.Stations)
}
