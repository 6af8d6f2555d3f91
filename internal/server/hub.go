package server

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/peoplekit/inbox-sync/internal/domain"
)

// Hub tracks the open push connections per user. A user may hold
// several connections at once, one per running client.
type Hub struct {
	mutex       sync.RWMutex
	connections map[int64]map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]map[*websocket.Conn]struct{}),
	}
}

// Register adds a connection for the user.
func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.connections[userID] == nil {
		h.connections[userID] = make(map[*websocket.Conn]struct{})
	}
	h.connections[userID][conn] = struct{}{}
}

// Unregister removes and closes a connection for the user.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conns, exists := h.connections[userID]; exists {
		if _, ok := conns[conn]; ok {
			_ = conn.Close()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.connections, userID)
		}
	}
}

// SendToUser pushes a notification envelope to every open connection of
// the user. Connections that fail to write are dropped.
func (h *Hub) SendToUser(userID int64, n domain.Notification) bool {
	h.mutex.RLock()
	conns := make([]*websocket.Conn, 0, len(h.connections[userID]))
	for conn := range h.connections[userID] {
		conns = append(conns, conn)
	}
	h.mutex.RUnlock()

	msg := domain.PushMessage{Type: domain.PushTypeNotification, Notification: &n}
	delivered := false
	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.Unregister(userID, conn)
			continue
		}
		delivered = true
	}
	return delivered
}

// OnlineCount returns the number of users with at least one connection.
func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

// Close closes every tracked connection.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conns := range h.connections {
		for conn := range conns {
			_ = conn.Close()
		}
		delete(h.connections, userID)
	}
}
