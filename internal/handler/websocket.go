package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"railroute/internal/domain"
	"railroute/internal/hub"
)

type WSHandler struct {
	hub     *hub.Hub
	planner RoutePlanner
	origins []string
	logger  *slog.Logger
}

// NewWSHandler accepts connections whose Origin host matches one of the
// given patterns.
func NewWSHandler(h *hub.Hub, planner RoutePlanner, originPatterns []string, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:     h,
		planner: planner,
		origins: originPatterns,
		logger:  logger.With("handler", "websocket"),
	}
}

type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type FindPathPayload struct {
	StartStation string `json:"start_station"`
	EndStation   string `json:"end_station"`
}

type ItineraryMessage struct {
	Type    string           `json:"type"`
	ID      string           `json:"id,omitempty"`
	Payload domain.Itinerary `json:"payload"`
}

type ErrorMessage struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type PongMessage struct {
	Type string `json:"type"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	client := hub.NewClient(uuid.New().String(), 64)
	h.hub.Register(client)
	ServerStats.IncWSConnections()
	defer ServerStats.DecWSConnections()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug("websocket read error", "client_id", client.ID, "error", err)
			}
			return
		}
		ServerStats.IncWSMessagesIn()

		if msgType != websocket.MessageText {
			continue
		}

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.send(client, ErrorMessage{Type: "error", Status: http.StatusBadRequest, Detail: "invalid message format"})
			continue
		}

		switch msg.Type {
		case "find_path":
			h.handleFindPath(ctx, client, msg)
		case "ping":
			h.send(client, PongMessage{Type: "pong"})
		default:
			h.send(client, ErrorMessage{Type: "error", ID: msg.ID, Status: http.StatusBadRequest, Detail: "unknown message type"})
		}
	}
}

func (h *WSHandler) handleFindPath(ctx context.Context, client *hub.Client, msg WSMessage) {
	var payload FindPathPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.StartStation == "" || payload.EndStation == "" {
		h.send(client, ErrorMessage{Type: "error", ID: msg.ID, Status: http.StatusBadRequest, Detail: "start_station and end_station are required"})
		return
	}

	it, err := h.planner.FindPath(ctx, payload.StartStation, payload.EndStation)
	if err != nil {
		status, detail := queryErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("websocket query failed", "client_id", client.ID, "error", err)
		}
		h.send(client, ErrorMessage{Type: "error", ID: msg.ID, Status: status, Detail: detail})
		return
	}

	h.send(client, ItineraryMessage{Type: "itinerary", ID: msg.ID, Payload: it})
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
			ServerStats.IncWSMessagesOut()

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) send(client *hub.Client, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if !client.Enqueue(data) {
		h.logger.Debug("failed to queue message", "client_id", client.ID)
	}
}
