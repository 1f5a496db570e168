package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/natefinch/lumberjack"

	"railroute/internal/cache"
	"railroute/internal/config"
	"railroute/internal/domain"
	"railroute/internal/graph"
	"railroute/internal/handler"
	"railroute/internal/hub"
	"railroute/internal/ingestor"
	"railroute/internal/middleware"
	"railroute/internal/planner"
	"railroute/internal/store"
	"railroute/pkg/connections"
	"railroute/pkg/linecatalog"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		})
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting railroute server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"connections_source", cfg.ConnectionsSource,
		"redis_enabled", cfg.RedisEnabled,
	)

	var catalog *linecatalog.Catalog
	if cfg.LineCatalogPath != "" {
		catalog, err = linecatalog.Load(cfg.LineCatalogPath)
		if err != nil {
			logger.Error("failed to load line catalog", "path", cfg.LineCatalogPath, "error", err)
			os.Exit(1)
		}
		logger.Info("line catalog loaded", "path", cfg.LineCatalogPath, "lines", len(catalog.Lines))
	}

	policy, err := graph.ParseDuplicatePolicy(cfg.DuplicateEdgePolicy)
	if err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	buildOpts := graph.BuildOptions{
		Strict:        cfg.StrictIngest,
		Duplicates:    policy,
		TransferLines: append([]string{cfg.TransferLine}, catalog.TransferLines()...),
	}

	source, err := connections.Open(cfg.ConnectionsSource, connections.Options{
		Table:    cfg.ConnectionsTable,
		CacheDir: cfg.ParseCacheDir,
		Timeout:  cfg.SourceTimeout,
	}, logger)
	if err != nil {
		logger.Error("invalid connection source", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisCache *cache.RedisCache
	if cfg.RedisEnabled {
		redisCache, err = cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing with local cache only", "addr", cfg.RedisAddr, "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}
	itineraries := cache.NewItineraryCache(cache.NewLocalCache(cfg.LocalCacheSize, cfg.CacheTTL), redisCache, cfg.CacheTTL, logger)

	networks := store.NewNetworkStore()
	wsHub := hub.NewHub(logger)
	routePlanner := planner.New(networks, itineraries, logger)

	ing := ingestor.New(source, networks, buildOpts, cfg.ReloadInterval, logger)
	ing.OnUpdate(func(ctx context.Context, net *graph.Network) {
		itineraries.Invalidate()
	})
	if redisCache != nil {
		warmer := cache.NewCacheWarmer(redisCache, cfg.CacheTTL, logger)
		ing.OnUpdate(func(ctx context.Context, net *graph.Network) {
			if err := warmer.Warm(ctx, net); err != nil {
				logger.Warn("cache warming failed", "version", net.Version, "error", err)
			}
		})
	}
	ing.OnUpdate(func(ctx context.Context, net *graph.Network) {
		wsHub.Broadcast(domain.NetworkEvent{
			Version:  net.Version,
			Stations: net.StationCount(),
			Edges:    net.EdgeCount(),
		})
	})

	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimitPerWindow > 0 {
		limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist, logger)
		limiter.OnBlocked(handler.ServerStats.IncRateLimitBlocked)
		rateLimit = limiter.Middleware
	}

	handlers := handler.Handlers{
		Routes: handler.NewRouteHandler(routePlanner, catalog, logger),
		WS:     handler.NewWSHandler(wsHub, routePlanner, handler.OriginHosts(cfg.CORSAllowedOrigins), logger),
		Health: handler.NewHealthHandler(ing, networks),
		Stats:  handler.NewStatsHandler(networks, itineraries, wsHub.ClientCount),
	}
	if cfg.ReloadToken != "" {
		handlers.Admin = handler.NewAdminHandler(ing, networks, cfg.ReloadToken, logger)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.NewRouter(handlers, cfg.CORSAllowedOrigins, rateLimit, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go wsHub.Run(ctx)

	go ing.Start(ctx)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
