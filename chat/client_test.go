package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hackfest-dev/hackfest-server/models"
)

type fakePoster struct {
	postErr   error
	delivered []int
}

func (f *fakePoster) Post(ctx context.Context, senderID int, room, content string, parentID *int) (*models.Message, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	return &models.Message{ID: 11, Room: room, SenderID: senderID, Content: content, ParentID: parentID}, nil
}

func (f *fakePoster) MarkDelivered(ctx context.Context, messageID int) error {
	f.delivered = append(f.delivered, messageID)
	return nil
}

func recvFrame(t *testing.T, c *Client) WebSocketMessage {
	t.Helper()
	select {
	case raw := <-c.Send:
		var frame WebSocketMessage
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("frame is not JSON: %v", err)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return WebSocketMessage{}
	}
}

func TestClientHandleInbound(t *testing.T) {
	hub := NewHub(slog.Default())
	go hub.Run()

	poster := &fakePoster{}
	sender := newTestClient(hub, "team_1", 1)
	sender.Poster = poster
	peer := newTestClient(hub, "team_1", 2)
	register(t, hub, sender)
	register(t, hub, peer)

	sender.handleInbound([]byte(`{"type":"CHAT_MESSAGE","content":"hello"}`))

	frame := recvFrame(t, peer)
	if frame.Type != "CHAT_MESSAGE" || frame.Room != "team_1" {
		t.Errorf("frame = %+v", frame)
	}
	var msg models.Message
	payload, _ := json.Marshal(frame.Payload)
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Content != "hello" {
		t.Errorf("payload = %s", payload)
	}
	if len(poster.delivered) != 1 || poster.delivered[0] != 11 {
		t.Errorf("delivered = %v, want [11]", poster.delivered)
	}
}

func TestClientHandleInboundRejections(t *testing.T) {
	hub := NewHub(slog.Default())
	go hub.Run()

	t.Run("malformed frame gets an error reply", func(t *testing.T) {
		sender := newTestClient(hub, "team_1", 1)
		sender.Poster = &fakePoster{}
		register(t, hub, sender)

		sender.handleInbound([]byte(`{"type":`))

		frame := recvFrame(t, sender)
		if frame.Type != "ERROR" {
			t.Errorf("frame = %+v, want ERROR", frame)
		}
	})

	t.Run("persist failure gets an error reply and no delivery", func(t *testing.T) {
		poster := &fakePoster{postErr: errors.New("room closed")}
		sender := newTestClient(hub, "team_2", 1)
		sender.Poster = poster
		register(t, hub, sender)

		sender.handleInbound([]byte(`{"type":"CHAT_MESSAGE","content":"hi"}`))

		frame := recvFrame(t, sender)
		if frame.Type != "ERROR" {
			t.Errorf("frame = %+v, want ERROR", frame)
		}
		if len(poster.delivered) != 0 {
			t.Errorf("delivered = %v, want none", poster.delivered)
		}
	})

	t.Run("non-chat frames are ignored", func(t *testing.T) {
		poster := &fakePoster{}
		sender := newTestClient(hub, "team_3", 1)
		sender.Poster = poster
		register(t, hub, sender)

		sender.handleInbound([]byte(`{"type":"PRESENCE","content":"x"}`))

		select {
		case raw := <-sender.Send:
			t.Errorf("unexpected frame %s", raw)
		default:
		}
		if len(poster.delivered) != 0 {
			t.Errorf("delivered = %v, want none", poster.delivered)
		}
	})
}
