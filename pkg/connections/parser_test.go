package connections

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railroute/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParserReadsRows(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "connections.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := NewParser(discardLogger()).Parse(f)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, domain.Record{Row: 3, StationA: "Siam (Silom)", StationB: "Sala Daeng", Line: "Silom", Time: "2"}, records[0])
	assert.Equal(t, "1.5 ", records[1].Time)
	assert.Equal(t, 4, records[1].Row)
	assert.Equal(t, "National Stadium", records[3].StationA)
	assert.Equal(t, 7, records[3].Row)

	conn, err := records[1].Parse()
	require.NoError(t, err)
	assert.Equal(t, 1.5, conn.Minutes)
}

func TestParserHeaderIsCaseInsensitive(t *testing.T) {
	input := "TIME, Line ,STATION_B,station_a\n4,Red,B,A\n"

	records, err := NewParser(discardLogger()).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.Record{Row: 2, StationA: "A", StationB: "B", Line: "Red", Time: "4"}, records[0])
}

func TestParserMissingColumnYieldsBlankFields(t *testing.T) {
	input := "station_A,station_B,line\nA,B,Red\nC,D\n"

	records, err := NewParser(discardLogger()).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Empty(t, records[0].Time)
	assert.Empty(t, records[1].Line)

	_, err = records[0].Parse()
	var malformed *domain.MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "missing time", malformed.Reason)
}

func TestParserToleratesStrayQuotes(t *testing.T) {
	input := "station_A,station_B,line,time\nA,B,Red,3\nSaphan \"Taksin\",C,Red,2\nC,D,Blue,4\n"

	records, err := NewParser(discardLogger()).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "A", records[0].StationA)
	assert.Equal(t, `Saphan "Taksin"`, records[1].StationA)
	assert.Equal(t, 3, records[1].Row)
	assert.Equal(t, domain.Record{Row: 4, StationA: "C", StationB: "D", Line: "Blue", Time: "4"}, records[2])
}

func TestParserStripsByteOrderMark(t *testing.T) {
	input := "\ufeffstation_A,station_B,line,time\nA,B,Red,3\n"

	records, err := NewParser(discardLogger()).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].StationA)

	_, err = records[0].Parse()
	assert.NoError(t, err)
}

func TestParserEmptyInput(t *testing.T) {
	_, err := NewParser(discardLogger()).Parse(strings.NewReader("# only a comment\n"))
	assert.ErrorIs(t, err, domain.ErrIngestionUnavailable)
}

func TestFileSource(t *testing.T) {
	src, err := Open(filepath.Join("testdata", "connections.csv"), Options{}, discardLogger())
	require.NoError(t, err)
	require.IsType(t, &FileSource{}, src)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.csv"), Options{}, discardLogger())

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIngestionUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenPicksSource(t *testing.T) {
	tests := []struct {
		location string
		want     Source
	}{
		{"data/connections.csv", &FileSource{}},
		{"csv:data/connections.csv", &FileSource{}},
		{"https://example.org/connections.csv", &HTTPSource{}},
		{"sqlite:data/network.db", &SQLiteSource{}},
		{"postgres://user@localhost/transit", &PostgresSource{}},
		{"postgresql://user@localhost/transit", &PostgresSource{}},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			src, err := Open(tt.location, Options{}, discardLogger())
			require.NoError(t, err)
			assert.IsType(t, tt.want, src)
		})
	}
}

func TestOpenRejectsBadInput(t *testing.T) {
	_, err := Open("", Options{}, discardLogger())
	assert.Error(t, err)

	_, err = Open("sqlite:x.db", Options{Table: "connections; drop table x"}, discardLogger())
	assert.Error(t, err)
}

func TestParseCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "connections.csv"))
	require.NoError(t, err)

	records, err := parseWithCache(data, dir, NewParser(discardLogger()), discardLogger())
	require.NoError(t, err)

	fp := DataFingerprint(data)
	cached, path, err := LoadParsedRecords(dir, fp)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, records, cached)

	_, _, err = LoadParsedRecords(dir, DataFingerprint([]byte("other")))
	assert.Error(t, err)
}
