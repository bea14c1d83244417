package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"testweave/internal/app"
)

const writeWait = 5 * time.Second

// wsMessage is the envelope for everything pushed to a client.
type wsMessage struct {
	Type    string      `json:"type"`
	Step    string      `json:"step,omitempty"`
	Message string      `json:"message,omitempty"`
	RunID   string      `json:"run_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Hub tracks connected WebSocket clients by client ID. Delivery is
// best-effort: a slow or gone client loses messages, the run is never
// stalled for it.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*websocket.Conn)}
}

// Register associates a connection with a client ID, displacing any
// previous connection under the same ID.
func (h *Hub) Register(clientID string, conn *websocket.Conn) {
	h.mu.Lock()
	prev := h.clients[clientID]
	h.clients[clientID] = conn
	h.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

// Unregister drops a connection if it is still the current one.
func (h *Hub) Unregister(clientID string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.clients[clientID] == conn {
		delete(h.clients, clientID)
	}
	h.mu.Unlock()
	conn.Close()
}

// SendProgress pushes one progress step to a client.
func (h *Hub) SendProgress(clientID, runID, step, message string) {
	h.send(clientID, wsMessage{Type: "progress", RunID: runID, Step: step, Message: message})
}

// SendResult pushes the terminal result to a client.
func (h *Hub) SendResult(clientID, runID string, result interface{}) {
	h.send(clientID, wsMessage{Type: "result", RunID: runID, Data: result})
}

// send holds the hub lock for the write: gorilla connections allow one
// concurrent writer, and the write deadline bounds how long that is.
func (h *Hub) send(clientID string, msg wsMessage) {
	if clientID == "" {
		return
	}
	h.mu.Lock()
	conn := h.clients[clientID]
	if conn == nil {
		h.mu.Unlock()
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteJSON(msg)
	h.mu.Unlock()
	if err != nil {
		app.GetLogger().Debug("dropping client %s: %v", clientID, err)
		h.Unregister(clientID, conn)
	}
}
