package connections

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	_ "modernc.org/sqlite"

	"railroute/internal/domain"
)

// SQLiteSource reads connections from a table with columns
// station_a, station_b, line, time.
type SQLiteSource struct {
	path    string
	table   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewSQLiteSource(path, table string, timeout time.Duration, logger *slog.Logger) *SQLiteSource {
	return &SQLiteSource{
		path:    path,
		table:   table,
		timeout: timeout,
		logger:  logger.With("component", "sqlite_source"),
	}
}

func (s *SQLiteSource) Name() string { return "sqlite:" + s.path }

func (s *SQLiteSource) Load(ctx context.Context) ([]domain.Record, error) {
	// sql.Open would silently create a missing database file.
	if _, err := os.Stat(s.path); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIngestionUnavailable, err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", domain.ErrIngestionUnavailable, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT station_a, station_b, line, CAST("time" AS TEXT)
		FROM %s
		ORDER BY rowid
	`, s.table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query connections: %w", domain.ErrIngestionUnavailable, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var a, b, line, minutes sql.NullString
		if err := rows.Scan(&a, &b, &line, &minutes); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		records = append(records, domain.Record{
			Row:      len(records) + 1,
			StationA: a.String,
			StationB: b.String,
			Line:     line.String,
			Time:     minutes.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}

	s.logger.Info("loaded connections", "table", s.table, "rows", len(records))
	return records, nil
}

// PostgresSource reads the same table layout from Postgres.
type PostgresSource struct {
	url     string
	table   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewPostgresSource(url, table string, timeout time.Duration, logger *slog.Logger) *PostgresSource {
	return &PostgresSource{
		url:     url,
		table:   table,
		timeout: timeout,
		logger:  logger.With("component", "postgres_source"),
	}
}

func (s *PostgresSource) Name() string { return "postgres:" + s.table }

func (s *PostgresSource) Load(ctx context.Context) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := pgx.Connect(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %w", domain.ErrIngestionUnavailable, err)
	}
	defer conn.Close(context.Background())

	query := fmt.Sprintf(`
		SELECT station_a, station_b, line, "time"::text
		FROM %s
		ORDER BY ctid
	`, s.table)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query connections: %w", domain.ErrIngestionUnavailable, err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var a, b, line, minutes *string
		if err := rows.Scan(&a, &b, &line, &minutes); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		records = append(records, domain.Record{
			Row:      len(records) + 1,
			StationA: deref(a),
			StationB: deref(b),
			Line:     deref(line),
			Time:     deref(minutes),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate connections: %w", err)
	}

	s.logger.Info("loaded connections", "table", s.table, "rows", len(records))
	return records, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
