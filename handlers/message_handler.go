package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackfest-dev/hackfest-server/middleware"
	"github.com/hackfest-dev/hackfest-server/services"
)

var errMissingRoom = errors.New("room parameter is required")

type MessageHandler struct {
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// History returns recent messages for a room the caller belongs to.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
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

	messages, err := h.messageService.History(r.Context(), userID, room, queryInt(r, "limit", 50))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, messages)
}

// Delete tombstones a message. Only the sender may delete their own.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "messageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.messageService.Delete(r.Context(), id, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, jsonResponse{"deleted": true})
}
