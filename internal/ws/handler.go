package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Localhost control API, widgets connect from file:// and app origins.
		return true
	},
}

// event is the wire envelope pushed to stream subscribers.
type event struct {
	Type     string          `json:"type"`
	Message  string          `json:"message,omitempty"`
	Snapshot *types.Snapshot `json:"snapshot,omitempty"`
}

// Hub broadcasts session snapshots to websocket subscribers. It implements
// the controller's state sink, so every tick and transition reaches connected
// widgets live. New subscribers immediately receive the latest snapshot.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    types.Snapshot
	hasLast bool

	log *logging.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		log:     log,
	}
}

// HandleConnection upgrades the request and subscribes the client until it
// disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	_ = conn.WriteJSON(event{Type: "system", Message: "Connected to focusd"})
	if h.hasLast {
		snap := h.last
		_ = conn.WriteJSON(event{Type: "snapshot", Snapshot: &snap})
	}
	h.mu.Unlock()

	h.log.Debug("stream client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Read loop: clients only ever send pings; anything unreadable ends the
	// subscription.
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			h.mu.Lock()
			_ = conn.WriteJSON(event{Type: "pong"})
			h.mu.Unlock()
		}
	}

	h.drop(conn)
}

// Publish broadcasts a snapshot to all subscribers.
func (h *Hub) Publish(snap types.Snapshot) error {
	if snap.Workspaces == nil {
		snap.Workspaces = []int64{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = snap
	h.hasLast = true

	for conn := range h.clients {
		if err := conn.WriteJSON(event{Type: "snapshot", Snapshot: &snap}); err != nil {
			h.log.Debug("dropping stream client", zap.Error(err))
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

// Clear broadcasts the inactive snapshot when a session ends.
func (h *Hub) Clear() error {
	return h.Publish(types.Snapshot{
		State:      types.StateIdle.String(),
		Remaining:  "00:00",
		Workspaces: []int64{},
	})
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}
