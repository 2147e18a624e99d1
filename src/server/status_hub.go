package server

import (
	"sync"

	"github.com/gorilla/websocket"

	"walkforward/src/datamodels"
)

// StatusHub fans run status events out to every connected websocket client.
type StatusHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
}

func NewStatusHub() *StatusHub {
	return &StatusHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// AddClient adds a new client connection
func (h *StatusHub) AddClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

// RemoveClient removes a client connection
func (h *StatusHub) RemoveClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Broadcast sends a status event to every connected client. Clients whose
// write fails are dropped.
func (h *StatusHub) Broadcast(event datamodels.RunStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *StatusHub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
	return nil
}
