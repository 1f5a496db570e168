package planner

import (
	"fmt"
	"math"

	"railroute/internal/domain"
	"railroute/internal/graph"
)

// run accumulates consecutive path edges that share a line
type run struct {
	line     string
	transfer bool
	first    graph.NodeID
	last     graph.NodeID
	edges    int
	minutes  float64
}

// Compile groups a path into ride and walk legs. Leg times are rounded half
// to even from the exact sum of their edge weights; the totals are sums over
// the rounded legs.
func Compile(net *graph.Network, path graph.Path) (domain.Itinerary, error) {
	it := domain.EmptyItinerary()
	if len(path) < 2 {
		return it, nil
	}

	var cur *run
	for i := 0; i < len(path)-1; i++ {
		u, v := path[i], path[i+1]
		edge, ok := net.EdgeBetween(u, v)
		if !ok {
			return domain.Itinerary{}, fmt.Errorf("%w: no edge between %s and %s",
				domain.ErrInternalInconsistency, net.Name(u), net.Name(v))
		}

		if cur != nil && edge.Line == cur.line {
			cur.last = v
			cur.edges++
			cur.minutes += edge.Weight
			continue
		}

		if cur != nil {
			appendLeg(&it, net, cur)
		}
		cur = &run{
			line:     edge.Line,
			transfer: edge.Transfer,
			first:    u,
			last:     v,
			edges:    1,
			minutes:  edge.Weight,
		}
	}
	appendLeg(&it, net, cur)

	return it, nil
}

func appendLeg(it *domain.Itinerary, net *graph.Network, r *run) {
	leg := domain.Leg{
		Type:  domain.LegRide,
		Line:  r.line,
		From:  net.DisplayName(r.first),
		To:    net.DisplayName(r.last),
		Stops: r.edges,
		Time:  int(math.RoundToEven(r.minutes)),
	}
	if r.transfer {
		leg.Type = domain.LegWalk
		it.TotalTransfers++
	}
	it.Steps = append(it.Steps, leg)
	it.TotalTime += leg.Time
}
