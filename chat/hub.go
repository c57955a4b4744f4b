package chat

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/hackfest-dev/hackfest-server/metrics"
)

// WebSocketMessage is the frame exchanged with clients. Type is one of
// "CHAT_MESSAGE", "NOTIFICATION", "PRESENCE" or "ERROR".
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Room    string      `json:"room,omitempty"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			roomSize := len(h.rooms[client.Room])
			h.mu.Unlock()
			metrics.ConnectedClients.Inc()
			h.logger.Info("websocket client joined room", "room", client.Room, "user_id", client.UserID, "room_size", roomSize)

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, joined := roomClients[client]; joined {
					client.closeSend()
					delete(roomClients, client)
					metrics.ConnectedClients.Dec()
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
					h.logger.Info("websocket client left room", "room", client.Room, "user_id", client.UserID, "room_size", len(roomClients))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom delivers a message to every client currently connected to
// the room. Rooms with no connected clients are a no-op.
func (h *Hub) BroadcastToRoom(room string, message interface{}) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "room", room, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[room]
	if !ok {
		return
	}
	for client := range roomClients {
		client.trySend(messageBytes)
	}
}

// RoomSize reports the number of clients connected to a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
