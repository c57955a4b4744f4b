package handlers

import (
	"net/http"

	"github.com/hackfest-dev/hackfest-server/middleware"
	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
	"github.com/hackfest-dev/hackfest-server/services"
)

type HackathonHandler struct {
	hackathonService services.HackathonService
	userService      services.UserService
}

func NewHackathonHandler(hackathonService services.HackathonService, userService services.UserService) *HackathonHandler {
	return &HackathonHandler{
		hackathonService: hackathonService,
		userService:      userService,
	}
}

func (h *HackathonHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.HackathonFilter{
		Status:     models.HackathonStatus(r.URL.Query().Get("status")),
		OnlyPublic: r.URL.Query().Get("all") == "",
		Limit:      queryInt(r, "limit", 20),
		Offset:     queryInt(r, "offset", 0),
	}

	hackathons, err := h.hackathonService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, hackathons)
}

func (h *HackathonHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hackathon, err := h.hackathonService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) Create(w http.ResponseWriter, r *http.Request) {
	currentUser, err := h.currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.HackathonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hackathon, err := h.hackathonService.Create(r.Context(), currentUser, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusCreated, hackathon)
}

func (h *HackathonHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUser, err := h.currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.HackathonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	hackathon, err := h.hackathonService.Update(r.Context(), id, currentUser, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUser, err := h.currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.hackathonService.Delete(r.Context(), id, currentUser); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, jsonResponse{"deleted": true})
}

// Register enrolls the authenticated user as a participant.
func (h *HackathonHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.hackathonService.Register(r.Context(), id, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusCreated, jsonResponse{"registered": true})
}

func (h *HackathonHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "hackathonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUser, err := h.currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	file, header, err := formFile(w, r, "banner")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	hackathon, err := h.hackathonService.UploadBanner(r.Context(), id, currentUser, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) currentUser(r *http.Request) (*models.User, error) {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return h.userService.GetByID(r.Context(), id)
}
