package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hackfest-dev/hackfest-server/chat"
	"github.com/hackfest-dev/hackfest-server/middleware"
	"github.com/hackfest-dev/hackfest-server/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks are delegated to the CORS middleware.
		return true
	},
}

type WebSocketHandler struct {
	hub            *chat.Hub
	messageService services.MessageService
	logger         *slog.Logger
}

func NewWebSocketHandler(hub *chat.Hub, messageService services.MessageService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		messageService: messageService,
		logger:         logger,
	}
}

// Serve upgrades the connection and attaches the client to a room. Callers
// authenticate via the "token" query parameter; room membership is enforced
// before the upgrade.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	room := chi.URLParam(r, "room")
	if room == "" {
		badRequestResponse(w, r, errMissingRoom)
		return
	}

	allowed, err := h.messageService.CanJoinRoom(r.Context(), userID, room)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if !allowed {
		forbiddenResponse(w, r, services.ErrNotRoomMember.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "room", room, "user_id", userID, "error", err)
		return
	}

	client := &chat.Client{
		Hub:    h.hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		Room:   room,
		UserID: userID,
		Poster: h.messageService,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
