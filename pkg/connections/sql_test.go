package connections

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railroute/internal/domain"
)

func createSQLiteNetwork(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE connections (
		station_a TEXT,
		station_b TEXT,
		line TEXT,
		"time" REAL
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO connections (station_a, station_b, line, "time") VALUES
		('A', 'B', 'Red', 3),
		('B', 'C', 'Red', 2.5),
		('C', NULL, 'Blue', 1)`)
	require.NoError(t, err)
	return path
}

func TestSQLiteSource(t *testing.T) {
	path := createSQLiteNetwork(t)

	src, err := Open("sqlite:"+path, Options{}, discardLogger())
	require.NoError(t, err)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "A", records[0].StationA)
	assert.Equal(t, 1, records[0].Row)
	assert.Equal(t, 3, records[2].Row)
	assert.Empty(t, records[2].StationB)

	conn, err := records[1].Parse()
	require.NoError(t, err)
	assert.Equal(t, 2.5, conn.Minutes)

	_, err = records[2].Parse()
	assert.Error(t, err)
}

func TestSQLiteSourceMissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	src := NewSQLiteSource(path, "connections", 0, discardLogger())

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIngestionUnavailable)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "loading must not create the database file")
}

func TestSQLiteSourceMissingTable(t *testing.T) {
	path := createSQLiteNetwork(t)
	src, err := Open("sqlite:"+path, Options{Table: "routes"}, discardLogger())
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIngestionUnavailable)
}

func TestPostgresSource(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	src, err := Open(url, Options{}, discardLogger())
	require.NoError(t, err)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	for _, r := range records {
		assert.Positive(t, r.Row)
	}
}
