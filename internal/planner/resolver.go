package planner

import (
	"railroute/internal/domain"
	"railroute/internal/graph"
)

// Resolve expands both display names to their alias sets and returns the
// cheapest path over every (source, target) pair. Pairs are tried source-major
// in alias order; on equal cost the first pair found is kept.
func Resolve(net *graph.Network, start, end string) (graph.Path, error) {
	sources, ok := net.Aliases(start)
	if !ok {
		return nil, &domain.UnknownStationError{Name: start}
	}
	targets, ok := net.Aliases(end)
	if !ok {
		return nil, &domain.UnknownStationError{Name: end}
	}

	var best graph.Path
	bestCost := 0.0
	for _, src := range sources {
		for _, dst := range targets {
			path, cost, found := net.ShortestPath(src, dst)
			if !found {
				continue
			}
			if best == nil || cost < bestCost {
				best = path
				bestCost = cost
			}
		}
	}

	if best == nil {
		return nil, &domain.NoRouteError{Start: start, End: end}
	}
	return best, nil
}
