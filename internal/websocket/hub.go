// Package websocket pushes moderation events to connected clients.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"board/internal/models"

	"github.com/google/uuid"
)

// MessageToSend defines the structure for sending a message to a specific user.
type MessageToSend struct {
	TargetUserID uuid.UUID
	Payload      []byte
}

// Hub maintains the set of active clients. Broadcasts reach moderators only.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Messages for every connected moderator.
	Broadcast chan []byte

	// Channel for sending messages to specific users.
	SendDirect chan *MessageToSend

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	quit chan struct{}

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte),
		SendDirect: make(chan *MessageToSend),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		quit:       make(chan struct{}),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop. It returns after Stop.
func (h *Hub) Run() {
	slog.Info("WebSocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			slog.Debug("WebSocket client registered", "user", client.UserID, "role", client.Role, "connections", len(h.Clients[client.UserID]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					close(client.Send)
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
					}
					slog.Debug("WebSocket client unregistered", "user", client.UserID, "remaining", len(userClients))
				}
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			for _, userClients := range h.Clients {
				for client := range userClients {
					if client.Role != models.RoleModerator {
						continue
					}
					select {
					case client.Send <- message:
					default:
						slog.Warn("Broadcast send buffer full", "user", client.UserID)
					}
				}
			}
			h.mu.RUnlock()

		case directMessage := <-h.SendDirect:
			h.mu.RLock()
			for client := range h.Clients[directMessage.TargetUserID] {
				select {
				case client.Send <- directMessage.Payload:
				default:
					slog.Warn("Send channel full, message dropped", "user", client.UserID)
				}
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for userID, userClients := range h.Clients {
				for client := range userClients {
					close(client.Send)
				}
				delete(h.Clients, userID)
			}
			h.mu.Unlock()
			slog.Info("WebSocket hub stopped")
			return
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.quit)
}

// Publish forwards a moderation event to every connected moderator. A role
// change is also delivered to the user whose role changed.
func (h *Hub) Publish(ctx context.Context, event models.ModerationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode moderation event", "kind", event.Kind, "error", err)
		return
	}

	select {
	case h.Broadcast <- payload:
	case <-ctx.Done():
	case <-h.quit:
	case <-time.After(time.Second):
		slog.Warn("Timeout queuing moderation event", "kind", event.Kind)
	}

	if event.Kind == models.EventRoleChanged {
		h.SendDirectMessage(event.TargetID, payload)
	}
}

// SendDirectMessage allows other parts of the application to send a message
// to a specific user via the WebSocket hub.
func (h *Hub) SendDirectMessage(targetUserID uuid.UUID, payload []byte) {
	message := &MessageToSend{
		TargetUserID: targetUserID,
		Payload:      payload,
	}
	select {
	case h.SendDirect <- message:
	case <-h.quit:
	case <-time.After(1 * time.Second):
		slog.Warn("Timeout queuing direct message", "user", targetUserID)
	}
}

// ConnectionCount returns the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, userClients := range h.Clients {
		n += len(userClients)
	}
	return n
}
