package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	LogLevel        slog.Level
	LogFile         string
	LogMaxSizeMB    int
	LogMaxBackups   int
	LogMaxAgeDays   int
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	ConnectionsSource string
	ConnectionsTable  string
	SourceTimeout     time.Duration
	ParseCacheDir     string
	ReloadInterval    time.Duration
	ReloadToken       string

	StrictIngest        bool
	DuplicateEdgePolicy string
	TransferLine        string
	LineCatalogPath     string

	CORSAllowedOrigins []string

	RedisEnabled   bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheTTL       time.Duration
	LocalCacheSize int

	RateLimitPerWindow int
	RateLimitWindow    time.Duration
	RateLimitWhitelist []string
}

func Load() (*Config, error) {
	source := getEnv("CONNECTIONS_SOURCE", "connections.csv")
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("CONNECTIONS_SOURCE must not be empty")
	}

	cfg := &Config{
		LogLevel:        getLogLevelEnv("LOG_LEVEL", slog.LevelInfo),
		LogFile:         getEnv("LOG_FILE", ""),
		LogMaxSizeMB:    getIntEnv("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups:   getIntEnv("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays:   getIntEnv("LOG_MAX_AGE_DAYS", 30),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		ConnectionsSource: source,
		ConnectionsTable:  getEnv("CONNECTIONS_TABLE", "connections"),
		SourceTimeout:     getDurationEnv("SOURCE_TIMEOUT", time.Minute),
		ParseCacheDir:     getEnv("PARSE_CACHE_DIR", ""),
		ReloadInterval:    getDurationEnv("RELOAD_INTERVAL", 0),
		ReloadToken:       getEnv("RELOAD_TOKEN", ""),

		StrictIngest:        getBoolEnv("STRICT_INGEST", false),
		DuplicateEdgePolicy: getEnv("DUPLICATE_EDGE_POLICY", "last"),
		TransferLine:        getEnv("TRANSFER_LINE", "Interchange"),
		LineCatalogPath:     getEnv("LINE_CATALOG", ""),

		CORSAllowedOrigins: getCSVEnv("CORS_ALLOWED_ORIGINS"),

		RedisEnabled:   getBoolEnv("REDIS_ENABLED", false),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),
		CacheTTL:       getDurationEnv("CACHE_TTL", 24*time.Hour),
		LocalCacheSize: getIntEnv("LOCAL_CACHE_SIZE", 10000),

		RateLimitPerWindow: getIntEnv("RATE_LIMIT_PER_WINDOW", 120),
		RateLimitWindow:    getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitWhitelist: getCSVEnv("RATE_LIMIT_WHITELIST"),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"http://127.0.0.1:5500", "http://localhost:5500"}
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}

func getCSVEnv(key string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}

	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			result = append(result, t)
		}
	}
	return result
}
