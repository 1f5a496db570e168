package handler

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"railroute/internal/store"
)

// Stats tracks server-wide metrics
type Stats struct {
	startTime        time.Time
	requestCount     atomic.Int64
	wsConnections    atomic.Int64
	wsMessagesIn     atomic.Int64
	wsMessagesOut    atomic.Int64
	rateLimitBlocked atomic.Int64
	reloads          atomic.Int64
}

// Global stats instance
var ServerStats = &Stats{
	startTime: time.Now(),
}

func (s *Stats) IncRequests()         { s.requestCount.Add(1) }
func (s *Stats) IncWSConnections()    { s.wsConnections.Add(1) }
func (s *Stats) DecWSConnections()    { s.wsConnections.Add(-1) }
func (s *Stats) IncWSMessagesIn()     { s.wsMessagesIn.Add(1) }
func (s *Stats) IncWSMessagesOut()    { s.wsMessagesOut.Add(1) }
func (s *Stats) IncRateLimitBlocked() { s.rateLimitBlocked.Add(1) }
func (s *Stats) IncReloads()          { s.reloads.Add(1) }

// CacheCounter exposes itinerary cache hit counts.
type CacheCounter interface {
	Hits() int64
	Misses() int64
}

type StatsHandler struct {
	networks *store.NetworkStore
	cache    CacheCounter
	clients  func() int
}

// NewStatsHandler builds the stats endpoint. cache and clients may be nil.
func NewStatsHandler(networks *store.NetworkStore, cache CacheCounter, clients func() int) *StatsHandler {
	return &StatsHandler{
		networks: networks,
		cache:    cache,
		clients:  clients,
	}
}

type StatsResponse struct {
	Server    ServerStatsResponse    `json:"server"`
	Network   store.NetworkStats     `json:"network"`
	WebSocket WebSocketStatsResponse `json:"websocket"`
	Cache     CacheStatsResponse     `json:"cache"`
	Go        GoStatsResponse        `json:"go"`
}

type ServerStatsResponse struct {
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	StartTime     time.Time `json:"start_time"`
	RequestCount  int64     `json:"request_count"`
	RateLimited   int64     `json:"rate_limited"`
	Reloads       int64     `json:"reloads"`
	Version       string    `json:"version"`
}

type WebSocketStatsResponse struct {
	Connections int64 `json:"connections"`
	Clients     int   `json:"clients"`
	MessagesIn  int64 `json:"messages_in"`
	MessagesOut int64 `json:"messages_out"`
}

type CacheStatsResponse struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Ratio  float64 `json:"hit_ratio"`
}

type GoStatsResponse struct {
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heap_alloc_bytes"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	NumGC       uint32  `json:"num_gc"`
	GoVersion   string  `json:"go_version"`
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(ServerStats.startTime)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	var hits, misses int64
	if h.cache != nil {
		hits, misses = h.cache.Hits(), h.cache.Misses()
	}
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	var clients int
	if h.clients != nil {
		clients = h.clients()
	}

	response := StatsResponse{
		Server: ServerStatsResponse{
			Uptime:        uptime.Round(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			StartTime:     ServerStats.startTime,
			RequestCount:  ServerStats.requestCount.Load(),
			RateLimited:   ServerStats.rateLimitBlocked.Load(),
			Reloads:       ServerStats.reloads.Load(),
			Version:       "1.0.0",
		},
		Network: h.networks.GetStats(),
		WebSocket: WebSocketStatsResponse{
			Connections: ServerStats.wsConnections.Load(),
			Clients:     clients,
			MessagesIn:  ServerStats.wsMessagesIn.Load(),
			MessagesOut: ServerStats.wsMessagesOut.Load(),
		},
		Cache: CacheStatsResponse{
			Hits:   hits,
			Misses: misses,
			Ratio:  ratio,
		},
		Go: GoStatsResponse{
			Goroutines:  runtime.NumGoroutine(),
			HeapAlloc:   mem.HeapAlloc,
			HeapAllocMB: float64(mem.HeapAlloc) / 1024 / 1024,
			NumGC:       mem.NumGC,
			GoVersion:   runtime.Version(),
		},
	}

	w.Header().Set("Cache-Control", "no-cache")
	respondJSON(w, http.StatusOK, response)
}
