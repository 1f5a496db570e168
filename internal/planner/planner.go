package planner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"railroute/internal/domain"
	"railroute/internal/graph"
)

// NetworkSource hands out the currently active network snapshot
type NetworkSource interface {
	Current() *graph.Network
}

// ItineraryCache stores compiled itineraries per network version
type ItineraryCache interface {
	GetItinerary(ctx context.Context, version, start, end string) (domain.Itinerary, bool)
	SetItinerary(ctx context.Context, version, start, end string, it domain.Itinerary)
}

// Planner answers station and route queries against the active network.
type Planner struct {
	networks NetworkSource
	cache    ItineraryCache
	logger   *slog.Logger
}

// New creates a Planner. cache may be nil.
func New(networks NetworkSource, cache ItineraryCache, logger *slog.Logger) *Planner {
	return &Planner{
		networks: networks,
		cache:    cache,
		logger:   logger.With("component", "planner"),
	}
}

func (p *Planner) network() (*graph.Network, error) {
	net := p.networks.Current()
	if net == nil || net.IsEmpty() {
		return nil, domain.ErrServiceUnavailable
	}
	return net, nil
}

// ListDisplayNames returns every known display name, sorted.
func (p *Planner) ListDisplayNames() ([]string, error) {
	net, err := p.network()
	if err != nil {
		return nil, err
	}
	return net.DisplayNames(), nil
}

// LinesAndStations returns each ride line with its stations in first-seen order.
func (p *Planner) LinesAndStations() ([]graph.LineStations, error) {
	net, err := p.network()
	if err != nil {
		return nil, err
	}
	return net.Lines(), nil
}

// FindPath resolves and compiles the fastest itinerary between two display names.
func (p *Planner) FindPath(ctx context.Context, start, end string) (domain.Itinerary, error) {
	net, err := p.network()
	if err != nil {
		return domain.Itinerary{}, err
	}

	if p.cache != nil {
		if it, ok := p.cache.GetItinerary(ctx, net.Version, start, end); ok {
			return it, nil
		}
	}

	begin := time.Now()
	path, err := Resolve(net, start, end)
	if err != nil {
		return domain.Itinerary{}, err
	}

	it, err := Compile(net, path)
	if err != nil {
		if errors.Is(err, domain.ErrInternalInconsistency) {
			p.logger.Error("itinerary compilation failed", "start", start, "end", end, "error", err)
		}
		return domain.Itinerary{}, err
	}

	p.logger.Debug("path found",
		"start", start,
		"end", end,
		"nodes", len(path),
		"legs", len(it.Steps),
		"total_time", it.TotalTime,
		"duration_ms", time.Since(begin).Milliseconds(),
	)

	if p.cache != nil {
		p.cache.SetItinerary(ctx, net.Version, start, end, it)
	}
	return it, nil
}
