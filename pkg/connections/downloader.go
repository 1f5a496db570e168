package connections

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"railroute/internal/domain"
)

// HTTPSource downloads the connection CSV on every load.
type HTTPSource struct {
	url      string
	cacheDir string
	client   *http.Client
	parser   *Parser
	logger   *slog.Logger
}

func NewHTTPSource(url string, opts Options, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url:      url,
		cacheDir: opts.CacheDir,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		parser: NewParser(logger),
		logger: logger.With("component", "http_source"),
	}
}

func (s *HTTPSource) Name() string { return s.url }

func (s *HTTPSource) Load(ctx context.Context) ([]domain.Record, error) {
	data, err := s.download(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestionUnavailable, err)
	}
	return parseWithCache(data, s.cacheDir, s.parser, s.logger)
}

func (s *HTTPSource) download(ctx context.Context) ([]byte, error) {
	start := time.Now()
	s.logger.Info("starting connections download", "url", s.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "railroute/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("failed to download connections",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("download connections: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("unexpected HTTP status",
			"status_code", resp.StatusCode,
			"status", resp.Status,
		)
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	s.logger.Info("connections download completed",
		"size_bytes", len(data),
		"total_duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}
