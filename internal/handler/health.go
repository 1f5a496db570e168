package handler

import (
	"net/http"
	"time"

	"railroute/internal/store"
)

// Readiness reports whether the connection data has been loaded.
type Readiness interface {
	IsReady() bool
	LastError() error
	LastLoad() time.Time
}

type HealthHandler struct {
	ingestor Readiness
	store    *store.NetworkStore
}

func NewHealthHandler(ing Readiness, s *store.NetworkStore) *HealthHandler {
	return &HealthHandler{
		ingestor: ing,
		store:    s,
	}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type ReadyResponse struct {
	Ready        bool       `json:"ready"`
	StationCount int        `json:"station_count"`
	Version      string     `json:"version,omitempty"`
	LastLoad     *time.Time `json:"last_load,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	ServerTime   time.Time  `json:"server_time"`
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := h.ingestor.IsReady()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	net := h.store.Current()
	resp := ReadyResponse{
		Ready:        ready,
		StationCount: net.StationCount(),
		Version:      net.Version,
		ServerTime:   time.Now(),
	}
	if t := h.ingestor.LastLoad(); !t.IsZero() {
		resp.LastLoad = &t
	}
	if err := h.ingestor.LastError(); err != nil {
		resp.LastError = err.Error()
	}

	respondJSON(w, status, resp)
}
