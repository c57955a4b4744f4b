package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hackfest-dev/hackfest-server/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// MessagePoster persists an inbound chat message and returns the stored
// record with its assigned id and timestamps. MarkDelivered flags the
// row once the room broadcast has gone out.
type MessagePoster interface {
	Post(ctx context.Context, senderID int, room, content string, parentID *int) (*models.Message, error)
	MarkDelivered(ctx context.Context, messageID int) error
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	Room   string
	UserID int
	Poster MessagePoster

	mu       sync.Mutex
	isClosed bool
}

type inboundFrame struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	ParentID *int   `json:"parent_id,omitempty"`
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isClosed {
		close(c.Send)
		c.isClosed = true
	}
}

func (c *Client) trySend(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed {
		return
	}
	select {
	case c.Send <- message:
	default:
		// Slow consumer, drop the frame rather than block the hub.
	}
}

// ReadPump consumes frames from the connection. "CHAT_MESSAGE" frames are
// persisted and echoed to the room; anything else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("unexpected websocket close", "room", c.Room, "user_id", c.UserID, "error", err)
			}
			break
		}

		c.handleInbound(raw)
	}
}

// handleInbound persists a chat frame, echoes it to the room and flags
// the stored row as delivered. Non-chat frames are ignored.
func (c *Client) handleInbound(raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.sendError("invalid message format")
		return
	}
	if frame.Type != "CHAT_MESSAGE" || frame.Content == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored, err := c.Poster.Post(ctx, c.UserID, c.Room, frame.Content, frame.ParentID)
	if err != nil {
		c.Hub.logger.Warn("failed to persist chat message", "room", c.Room, "user_id", c.UserID, "error", err)
		c.sendError("message rejected")
		return
	}

	c.Hub.BroadcastToRoom(c.Room, WebSocketMessage{
		Type:    "CHAT_MESSAGE",
		Payload: stored,
		Room:    c.Room,
	})

	// The delivered flag is bookkeeping; the broadcast already went out.
	if err := c.Poster.MarkDelivered(ctx, stored.ID); err != nil {
		c.Hub.logger.Warn("failed to mark message delivered", "message_id", stored.ID, "error", err)
	}
}

func (c *Client) sendError(reason string) {
	frame, err := json.Marshal(WebSocketMessage{Type: "ERROR", Payload: reason, Room: c.Room})
	if err != nil {
		return
	}
	c.trySend(frame)
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued frames into the same write.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
