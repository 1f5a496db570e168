package store

import (
	"sync/atomic"
	"time"

	"railroute/internal/graph"
)

// NetworkStore holds the active network snapshot. Readers never lock: a
// rebuild produces a whole new graph.Network and Swap publishes it at once.
type NetworkStore struct {
	current atomic.Pointer[graph.Network]
	swaps   atomic.Int64
}

func NewNetworkStore() *NetworkStore {
	s := &NetworkStore{}
	s.current.Store(graph.Empty())
	return s
}

func (s *NetworkStore) Current() *graph.Network {
	return s.current.Load()
}

// Swap publishes net and returns the snapshot it replaced.
func (s *NetworkStore) Swap(net *graph.Network) *graph.Network {
	s.swaps.Add(1)
	return s.current.Swap(net)
}

// Reset drops the active network and leaves the store explicitly empty.
func (s *NetworkStore) Reset() {
	s.current.Store(graph.Empty())
}

type NetworkStats struct {
	Stations int       `json:"stations"`
	Nodes    int       `json:"nodes"`
	Edges    int       `json:"edges"`
	Lines    int       `json:"lines"`
	Skipped  int       `json:"skipped_records"`
	Version  string    `json:"version,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
	Swaps    int64     `json:"swaps"`
	IsLoaded bool      `json:"is_loaded"`
}

func (s *NetworkStore) GetStats() NetworkStats {
	net := s.Current()
	return NetworkStats{
		Stations: net.StationCount(),
		Nodes:    net.NodeCount(),
		Edges:    net.EdgeCount(),
		Lines:    len(net.Lines()),
		Skipped:  net.Skipped,
		Version:  net.Version,
		LoadedAt: net.LoadedAt,
		Swaps:    s.swaps.Load(),
		IsLoaded: !net.IsEmpty(),
	}
}
