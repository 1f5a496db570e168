package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"railroute/internal/domain"
	"railroute/internal/graph"
	"railroute/pkg/linecatalog"
)

// RoutePlanner is the query surface the HTTP and websocket handlers need.
type RoutePlanner interface {
	ListDisplayNames() ([]string, error)
	LinesAndStations() ([]graph.LineStations, error)
	FindPath(ctx context.Context, start, end string) (domain.Itinerary, error)
}

type RouteHandler struct {
	planner RoutePlanner
	catalog *linecatalog.Catalog
	logger  *slog.Logger
}

// NewRouteHandler creates the station and route endpoints. catalog may be nil.
func NewRouteHandler(planner RoutePlanner, catalog *linecatalog.Catalog, logger *slog.Logger) *RouteHandler {
	return &RouteHandler{
		planner: planner,
		catalog: catalog,
		logger:  logger.With("handler", "routes"),
	}
}

// ListStations handles GET /api/all-stations
func (h *RouteHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	names, err := h.planner.ListDisplayNames()
	if err != nil {
		h.respondQueryError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	respondJSON(w, http.StatusOK, names)
}

// FindPath handles GET /api/find-path?start_station=&end_station=
func (h *RouteHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	from := q.Get("start_station")
	to := q.Get("end_station")

	if from == "" || to == "" {
		respondError(w, http.StatusBadRequest, "start_station and end_station are required")
		return
	}

	it, err := h.planner.FindPath(r.Context(), from, to)
	if err != nil {
		h.respondQueryError(w, r, err)
		return
	}

	h.logger.Debug("FindPath response",
		"request_id", RequestIDFromContext(r.Context()),
		"start_station", from,
		"end_station", to,
		"legs", len(it.Steps),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	respondJSON(w, http.StatusOK, it)
}

// LinesAndStations handles GET /api/lines-and-stations
func (h *RouteHandler) LinesAndStations(w http.ResponseWriter, r *http.Request) {
	lines, err := h.planner.LinesAndStations()
	if err != nil {
		h.respondQueryError(w, r, err)
		return
	}

	out := make(map[string][]string, len(lines))
	for _, l := range lines {
		out[l.Line] = l.Stations
	}
	respondJSON(w, http.StatusOK, out)
}

type LinesResponse struct {
	Lines []linecatalog.Line `json:"lines"`
	Count int                `json:"count"`
}

// ListLines handles GET /api/lines. Lines missing from the catalog are
// reported with their code as name.
func (h *RouteHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.planner.LinesAndStations()
	if err != nil {
		h.respondQueryError(w, r, err)
		return
	}

	out := make([]linecatalog.Line, 0, len(lines))
	for _, l := range lines {
		info, ok := h.catalog.Lookup(l.Line)
		if !ok {
			info = linecatalog.Line{Code: l.Line, Name: l.Line, Kind: linecatalog.KindRide}
		}
		out = append(out, info)
	}

	respondJSON(w, http.StatusOK, LinesResponse{Lines: out, Count: len(out)})
}

func (h *RouteHandler) respondQueryError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := queryErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("query failed", "request_id", RequestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	respondError(w, status, msg)
}

func queryErrorStatus(err error) (int, string) {
	var unknown *domain.UnknownStationError
	var noRoute *domain.NoRouteError

	switch {
	case errors.As(err, &unknown):
		return http.StatusNotFound, unknown.Error()
	case errors.As(err, &noRoute):
		return http.StatusNotFound, noRoute.Error()
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "station data is not available"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Detail: message})
}
