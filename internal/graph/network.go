package graph

import (
	"sort"
	"time"
)

// NodeID indexes a physical station node inside one Network.
type NodeID int32

// Path is an ordered node sequence; consecutive nodes share an edge.
type Path []NodeID

// Edge is one undirected connection between two physical nodes.
type Edge struct {
	A        NodeID
	B        NodeID
	Line     string
	Weight   float64
	Transfer bool
}

type halfEdge struct {
	to   NodeID
	edge int32
}

type pairKey struct {
	lo, hi NodeID
}

func keyFor(a, b NodeID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// LineStations lists the display names served by one line in first-seen order.
type LineStations struct {
	Line     string   `json:"line"`
	Stations []string `json:"stations"`
}

// Network is an immutable station graph plus its alias index. It is never
// modified after Build returns, so it can be shared by concurrent readers.
type Network struct {
	names   []string
	display []string
	ids     map[string]NodeID
	adj     [][]halfEdge
	edges   []Edge
	pairs   map[pairKey]int32

	aliases      map[string][]NodeID
	displayNames []string
	lines        []LineStations

	Version  string
	LoadedAt time.Time
	Skipped  int
}

// Empty returns a network with no nodes, used when nothing could be loaded.
func Empty() *Network {
	return &Network{
		ids:     make(map[string]NodeID),
		pairs:   make(map[pairKey]int32),
		aliases: make(map[string][]NodeID),
	}
}

func (n *Network) IsEmpty() bool {
	return len(n.names) == 0
}

func (n *Network) NodeCount() int { return len(n.names) }
func (n *Network) EdgeCount() int { return len(n.edges) }

// StationCount is the number of distinct display names.
func (n *Network) StationCount() int { return len(n.displayNames) }

// Name returns the raw label of a node.
func (n *Network) Name(id NodeID) string {
	return n.names[id]
}

// DisplayName returns the normalized, rider-facing name of a node.
func (n *Network) DisplayName(id NodeID) string {
	return n.display[id]
}

// Lookup finds a node by its raw label.
func (n *Network) Lookup(name string) (NodeID, bool) {
	id, ok := n.ids[name]
	return id, ok
}

// Aliases returns the physical nodes registered under a display name, in
// first-seen order. The returned slice must not be modified.
func (n *Network) Aliases(display string) ([]NodeID, bool) {
	ids, ok := n.aliases[display]
	return ids, ok
}

// DisplayNames returns all display names sorted ascending.
func (n *Network) DisplayNames() []string {
	out := make([]string, len(n.displayNames))
	copy(out, n.displayNames)
	return out
}

// EdgeBetween looks up the edge joining a and b in either direction.
func (n *Network) EdgeBetween(a, b NodeID) (Edge, bool) {
	idx, ok := n.pairs[keyFor(a, b)]
	if !ok {
		return Edge{}, false
	}
	return n.edges[idx], true
}

// Lines returns the ride lines and their stations in first-seen order.
func (n *Network) Lines() []LineStations {
	out := make([]LineStations, len(n.lines))
	for i, l := range n.lines {
		stations := make([]string, len(l.Stations))
		copy(stations, l.Stations)
		out[i] = LineStations{Line: l.Line, Stations: stations}
	}
	return out
}

func (n *Network) finalize() {
	n.displayNames = make([]string, 0, len(n.aliases))
	for name := range n.aliases {
		n.displayNames = append(n.displayNames, name)
	}
	sort.Strings(n.displayNames)

	byLine := make(map[string]int)
	seen := make(map[string]map[string]struct{})
	for _, e := range n.edges {
		if e.Transfer {
			continue
		}
		idx, ok := byLine[e.Line]
		if !ok {
			idx = len(n.lines)
			byLine[e.Line] = idx
			n.lines = append(n.lines, LineStations{Line: e.Line})
			seen[e.Line] = make(map[string]struct{})
		}
		for _, id := range [2]NodeID{e.A, e.B} {
			name := n.display[id]
			if _, dup := seen[e.Line][name]; dup {
				continue
			}
			seen[e.Line][name] = struct{}{}
			n.lines[idx].Stations = append(n.lines[idx].Stations, name)
		}
	}
}
