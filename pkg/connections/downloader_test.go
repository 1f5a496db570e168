package connections

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"railroute/internal/domain"
)

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "railroute/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("station_A,station_B,line,time\nA,B,Red,3\nB,C,Red,2\n"))
	}))
	defer srv.Close()

	src, err := Open(srv.URL+"/connections.csv", Options{CacheDir: t.TempDir()}, discardLogger())
	require.NoError(t, err)

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C", records[1].StationB)

	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, again)
}

func TestHTTPSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	src, err := Open(srv.URL, Options{}, discardLogger())
	require.NoError(t, err)

	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIngestionUnavailable)
}
