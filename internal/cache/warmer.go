package cache

import (
	"context"
	"log/slog"
	"time"

	"railroute/internal/graph"
)

// CacheWarmer publishes the static parts of a freshly loaded network to Redis
// so that other replicas and the front-end build can read them without
// rebuilding the graph.
type CacheWarmer struct {
	cache  *RedisCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCacheWarmer(cache *RedisCache, ttl time.Duration, logger *slog.Logger) *CacheWarmer {
	return &CacheWarmer{
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "cache_warmer"),
	}
}

type StationsPayload struct {
	Version     string    `json:"version"`
	Stations    []string  `json:"stations"`
	GeneratedAt time.Time `json:"generated_at"`
}

type LinesPayload struct {
	Version     string               `json:"version"`
	Lines       []graph.LineStations `json:"lines"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// Warm publishes the station list and line index of net under its version,
// moves the version pointer and removes the previous version's payloads.
func (w *CacheWarmer) Warm(ctx context.Context, net *graph.Network) error {
	start := time.Now()
	w.logger.Info("starting cache warming", "version", net.Version)

	previous, err := w.cache.PublishedVersion(ctx)
	if err != nil {
		w.logger.Debug("failed to read published version", "error", err)
	}

	now := time.Now()
	size, err := w.cache.PublishSnapshot(ctx,
		StationsPayload{Version: net.Version, Stations: net.DisplayNames(), GeneratedAt: now},
		LinesPayload{Version: net.Version, Lines: net.Lines(), GeneratedAt: now},
		w.ttl,
	)
	if err != nil {
		return err
	}

	if previous != "" && previous != net.Version {
		if err := w.cache.DropSnapshot(ctx, previous); err != nil {
			w.logger.Debug("failed to drop stale snapshot", "version", previous, "error", err)
		}
	}

	w.logger.Info("cache warming completed",
		"version", net.Version,
		"previous_version", previous,
		"stations", net.StationCount(),
		"compressed_bytes", size,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
