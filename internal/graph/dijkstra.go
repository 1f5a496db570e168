package graph

import (
	"container/heap"
	"math"
)

type queueItem struct {
	node NodeID
	dist float64
}

// distQueue orders by distance, then node ID, so equal-cost searches pop in a
// stable order and repeated queries return the same path.
type distQueue []queueItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q distQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x any)   { *q = append(*q, x.(queueItem)) }
func (q *distQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// ShortestPath runs Dijkstra from src to dst. ok is false when dst is unreachable.
func (n *Network) ShortestPath(src, dst NodeID) (path Path, cost float64, ok bool) {
	if int(src) >= len(n.names) || int(dst) >= len(n.names) || src < 0 || dst < 0 {
		return nil, 0, false
	}
	if src == dst {
		return Path{src}, 0, true
	}

	dist := make([]float64, len(n.names))
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	prev := make([]NodeID, len(n.names))
	for i := range prev {
		prev[i] = -1
	}
	settled := make([]bool, len(n.names))

	dist[src] = 0
	q := &distQueue{{node: src, dist: 0}}

	for q.Len() > 0 {
		item := heap.Pop(q).(queueItem)
		u := item.node
		if settled[u] {
			continue
		}
		settled[u] = true
		if u == dst {
			break
		}

		for _, he := range n.adj[u] {
			if settled[he.to] {
				continue
			}
			alt := dist[u] + n.edges[he.edge].Weight
			if alt < dist[he.to] {
				dist[he.to] = alt
				prev[he.to] = u
				heap.Push(q, queueItem{node: he.to, dist: alt})
			}
		}
	}

	if !settled[dst] {
		return nil, 0, false
	}

	for at := dst; at != -1; at = prev[at] {
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, dist[dst], true
}
