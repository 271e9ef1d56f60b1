package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed to connected admin dashboards
const (
	EventTypeRequestSubmitted = "request_submitted"
	EventTypeRequestProcessed = "request_processed"
)

// Event is a message sent over WebSocket to the admin console
type Event struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a connected admin dashboard
type Client struct {
	AdminID primitive.ObjectID
	Conn    *websocket.Conn

	writeMu sync.Mutex
}

// Send writes one event to the dashboard. gorilla/websocket supports at most
// one concurrent writer per connection, so every write goes through the
// client's write mutex.
func (c *Client) Send(event Event) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(event)
}

// Hub maintains the set of connected dashboards and broadcasts request
// lifecycle events to all of them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event to every connected dashboard. Write failures are
// logged and the connection is left for the read loop to reap.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if err := client.Send(event); err != nil {
			log.Printf("Failed to push event to dashboard: %v", err)
		}
	}
}

// NotifyRequestSubmitted announces a new pending request to the console
func (h *Hub) NotifyRequestSubmitted(requestData interface{}) {
	h.Broadcast(Event{
		Type:    EventTypeRequestSubmitted,
		Message: "New organisation info update request submitted",
		Data:    requestData,
	})
}

// NotifyRequestProcessed announces an approval/rejection to the console
func (h *Hub) NotifyRequestProcessed(requestData interface{}) {
	h.Broadcast(Event{
		Type:    EventTypeRequestProcessed,
		Message: "An update request has been processed",
		Data:    requestData,
	})
}
