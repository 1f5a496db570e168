package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"railroute/internal/domain"
)

type Client struct {
	ID   string
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(id string, bufferSize int) *Client {
	return &Client{
		ID:   id,
		Send: make(chan []byte, bufferSize),
	}
}

// Enqueue queues data for the write loop. It reports false when the buffer is
// full or the client has already been closed by the hub.
func (c *Client) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Hub fans network change events out to every connected websocket client.
// Membership changes take the lock directly so that a register always lands
// before the matching unregister.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	stopped bool

	broadcast chan domain.NetworkEvent

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan domain.NetworkEvent, 16),
		logger:    logger.With("component", "hub"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case event := <-h.broadcast:
			h.fanout(event)
		}
	}
}

// Broadcast queues an event without blocking the caller.
func (h *Hub) Broadcast(event domain.NetworkEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping network event", "version", event.Version)
	}
}

// Register adds a client. Once the hub has stopped the client is closed instead.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		client.close()
		return
	}
	h.clients[client] = struct{}{}
	h.logger.Debug("client registered", "client_id", client.ID, "total", len(h.clients))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.logger.Debug("client unregistered", "client_id", client.ID, "total", len(h.clients))
	}
	client.close()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type EventMessage struct {
	Type    string              `json:"type"`
	Payload domain.NetworkEvent `json:"payload"`
}

func (h *Hub) fanout(event domain.NetworkEvent) {
	data, err := json.Marshal(EventMessage{Type: "network_reloaded", Payload: event})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.Enqueue(data) {
			h.logger.Debug("client send buffer full", "client_id", client.ID)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]struct{})
	h.stopped = true
}
