package connections

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"railroute/internal/domain"
)

const (
	colStationA = "station_a"
	colStationB = "station_b"
	colLine     = "line"
	colTime     = "time"
)

// Parser reads connection rows from CSV. Lines starting with '#' are ignored
// and anything after a '#' inside a row is treated as a trailing comment.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("component", "connections_parser"),
	}
}

func (p *Parser) Parse(r io.Reader) ([]domain.Record, error) {
	start := time.Now()

	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", domain.ErrIngestionUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := makeIndex(stripComment(header))
	for _, col := range []string{colStationA, colStationB, colLine, colTime} {
		if _, ok := idx[col]; !ok {
			p.logger.Warn("connection file is missing a column", "column", col)
		}
	}

	var records []domain.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			p.logger.Warn("unreadable connection row", "line", parseErr.StartLine, "error", parseErr.Err)
			records = append(records, domain.Record{Row: parseErr.StartLine, Defect: parseErr.Err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		line, _ := cr.FieldPos(0)
		row = stripComment(row)
		records = append(records, domain.Record{
			Row:      line,
			StationA: getField(row, idx, colStationA),
			StationB: getField(row, idx, colStationB),
			Line:     getField(row, idx, colLine),
			Time:     getField(row, idx, colTime),
		})
	}

	p.logger.Info("parsed connections",
		"rows", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}

func stripComment(row []string) []string {
	for i, field := range row {
		if j := strings.IndexByte(field, '#'); j >= 0 {
			out := make([]string, i+1)
			copy(out, row[:i])
			out[i] = field[:j]
			return out
		}
	}
	return row
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return record[i]
	}
	return ""
}
