package handler

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"railroute/internal/store"
)

// Reloader rebuilds the network from its source.
type Reloader interface {
	Load(ctx context.Context) error
}

type AdminHandler struct {
	reloader Reloader
	store    *store.NetworkStore
	token    string
	logger   *slog.Logger
}

// NewAdminHandler guards reloads with token. An empty token disables the endpoint.
func NewAdminHandler(reloader Reloader, s *store.NetworkStore, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		reloader: reloader,
		store:    s,
		token:    token,
		logger:   logger.With("handler", "admin"),
	}
}

type ReloadResponse struct {
	Version  string `json:"version"`
	Stations int    `json:"stations"`
	Edges    int    `json:"edges"`
	Skipped  int    `json:"skipped_records"`
}

func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.token == "" {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	given := r.Header.Get("X-Reload-Token")
	if subtle.ConstantTimeCompare([]byte(given), []byte(h.token)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid reload token")
		return
	}

	if err := h.reloader.Load(r.Context()); err != nil {
		h.logger.Error("manual reload failed", "request_id", RequestIDFromContext(r.Context()), "error", err)
		respondError(w, http.StatusServiceUnavailable, "reload failed")
		return
	}
	ServerStats.IncReloads()

	net := h.store.Current()
	h.logger.Info("manual reload completed", "request_id", RequestIDFromContext(r.Context()), "version", net.Version)
	respondJSON(w, http.StatusOK, ReloadResponse{
		Version:  net.Version,
		Stations: net.StationCount(),
		Edges:    net.EdgeCount(),
		Skipped:  net.Skipped,
	})
}
