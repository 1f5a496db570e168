package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_ADDR", "LOG_LEVEL", "LOG_FILE", "CONNECTIONS_SOURCE", "CONNECTIONS_TABLE",
	"RELOAD_INTERVAL", "STRICT_INGEST", "DUPLICATE_EDGE_POLICY", "TRANSFER_LINE",
	"CORS_ALLOWED_ORIGINS", "REDIS_ENABLED", "CACHE_TTL", "RATE_LIMIT_PER_WINDOW",
	"RATE_LIMIT_WHITELIST", "RELOAD_TOKEN",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "connections.csv", cfg.ConnectionsSource)
	assert.Equal(t, "connections", cfg.ConnectionsTable)
	assert.Equal(t, "last", cfg.DuplicateEdgePolicy)
	assert.Equal(t, "Interchange", cfg.TransferLine)
	assert.Zero(t, cfg.ReloadInterval)
	assert.False(t, cfg.StrictIngest)
	assert.False(t, cfg.RedisEnabled)
	assert.Empty(t, cfg.ReloadToken)
	assert.Equal(t, []string{"http://127.0.0.1:5500", "http://localhost:5500"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("CONNECTIONS_SOURCE", "sqlite:/var/lib/railroute/network.db")
	t.Setenv("RELOAD_INTERVAL", "15m")
	t.Setenv("STRICT_INGEST", "true")
	t.Setenv("DUPLICATE_EDGE_POLICY", "min")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_PER_WINDOW", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "sqlite:/var/lib/railroute/network.db", cfg.ConnectionsSource)
	assert.Equal(t, 15*time.Minute, cfg.ReloadInterval)
	assert.True(t, cfg.StrictIngest)
	assert.Equal(t, "min", cfg.DuplicateEdgePolicy)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerWindow, "unparsable values fall back to the default")
}

func TestLoadRejectsBlankSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONNECTIONS_SOURCE", "   ")

	_, err := Load()
	assert.Error(t, err)
}
