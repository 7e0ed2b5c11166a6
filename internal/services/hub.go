package services

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Event types sent over WebSocket
const (
	EventNotification = "notification"
	EventGoalUpdated  = "goal_updated"
)

// Event is the JSON message sent to connected clients
type Event struct {
	Type   string      `json:"type"`
	GoalID string      `json:"goalId,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Hub fans events out to every open connection of a user. A user with
// several tabs or devices gets each event once per connection.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[Conn]bool // userID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[Conn]bool)}
}

func (h *Hub) Register(userID uuid.UUID, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[Conn]bool)
	}
	h.rooms[userID][c] = true
	log.Printf("WS register: user %s connected (total: %d)", userID, len(h.rooms[userID]))
}

func (h *Hub) Unregister(userID uuid.UUID, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[userID]; ok {
		delete(conns, c)
		log.Printf("WS unregister: user %s disconnected (remaining: %d)", userID, len(conns))
		if len(conns) == 0 {
			delete(h.rooms, userID)
		}
	}
}

// Connections reports how many connections userID has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Send writes event to all of userID's connections. Users without an open
// connection are skipped silently.
func (h *Hub) Send(userID uuid.UUID, event Event) {
	// writes happen under the write lock; websocket conns allow one writer at a time
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[userID]
	if !ok {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("WS send marshal error: %v", err)
		return
	}

	for c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("WS write error for user %s: %v", userID, err)
		}
	}
}
