package notification

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub keeps one live websocket connection per party for in-app
// delivery. A party reconnecting replaces its old connection.
type Hub struct {
	connections map[int64]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*websocket.Conn),
	}
}

func (h *Hub) Register(partyID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if oldConn, exists := h.connections[partyID]; exists && oldConn != nil {
		_ = oldConn.Close()
	}

	h.connections[partyID] = conn
}

func (h *Hub) Unregister(partyID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn := h.connections[partyID]; conn != nil {
		_ = conn.Close()
	}
	delete(h.connections, partyID)
}

// SendToParty pushes a message to the party's connection if one is
// live. Returns false when the party is offline or the write failed.
func (h *Hub) SendToParty(partyID int64, message interface{}) bool {
	h.mutex.RLock()
	conn, exists := h.connections[partyID]
	h.mutex.RUnlock()

	if !exists || conn == nil {
		return false
	}

	if err := conn.WriteJSON(message); err != nil {
		h.Unregister(partyID)
		return false
	}

	return true
}

func (h *Hub) IsOnline(partyID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[partyID]
	return exists
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for partyID, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, partyID)
	}
}
