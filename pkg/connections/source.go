package connections

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"railroute/internal/domain"
)

// Source yields the raw connection records a network is built from.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]domain.Record, error)
}

type Options struct {
	// Table is the table read by database sources.
	Table string
	// CacheDir holds parsed CSV records keyed by content hash. Empty disables it.
	CacheDir string
	// Timeout bounds HTTP downloads and database queries.
	Timeout time.Duration
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Open picks a Source from a location string:
//
//	csv:<path> or a bare path    CSV file
//	http(s)://...                CSV download
//	sqlite:<path>                SQLite table
//	postgres://, postgresql://   Postgres table
func Open(location string, opts Options, logger *slog.Logger) (Source, error) {
	if opts.Table == "" {
		opts.Table = "connections"
	}
	if !tableNameRe.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}

	switch {
	case location == "":
		return nil, fmt.Errorf("empty connection source")
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location, opts, logger), nil
	case strings.HasPrefix(location, "sqlite:"):
		return NewSQLiteSource(strings.TrimPrefix(location, "sqlite:"), opts.Table, opts.Timeout, logger), nil
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return NewPostgresSource(location, opts.Table, opts.Timeout, logger), nil
	default:
		return NewFileSource(strings.TrimPrefix(location, "csv:"), opts, logger), nil
	}
}

// FileSource reads a CSV file from disk.
type FileSource struct {
	path     string
	cacheDir string
	parser   *Parser
	logger   *slog.Logger
}

func NewFileSource(path string, opts Options, logger *slog.Logger) *FileSource {
	return &FileSource{
		path:     path,
		cacheDir: opts.CacheDir,
		parser:   NewParser(logger),
		logger:   logger.With("component", "file_source"),
	}
}

func (s *FileSource) Name() string { return "csv:" + s.path }

func (s *FileSource) Load(ctx context.Context) ([]domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrIngestionUnavailable, s.path, err)
	}
	return parseWithCache(data, s.cacheDir, s.parser, s.logger)
}

func parseWithCache(data []byte, cacheDir string, parser *Parser, logger *slog.Logger) ([]domain.Record, error) {
	if cacheDir == "" {
		return parser.Parse(bytes.NewReader(data))
	}

	fingerprint := DataFingerprint(data)
	records, cachePath, err := LoadParsedRecords(cacheDir, fingerprint)
	if err == nil {
		logger.Info("loaded parsed connections cache", "path", cachePath, "rows", len(records))
		return records, nil
	}
	logger.Debug("parsed connections cache miss", "path", cachePath, "error", err)

	records, err = parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		if savedPath, saveErr := SaveParsedRecords(cacheDir, fingerprint, records); saveErr != nil {
			logger.Warn("failed to persist parsed connections cache", "error", saveErr)
		} else {
			logger.Info("persisted parsed connections cache", "path", savedPath)
		}
	}
	return records, nil
}
