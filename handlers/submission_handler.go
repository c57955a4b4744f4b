package handlers

import (
	"net/http"

	"github.com/hackfest-dev/hackfest-server/middleware"
	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/services"
)

type SubmissionHandler struct {
	submissionService services.SubmissionService
	userService       services.UserService
}

func NewSubmissionHandler(submissionService services.SubmissionService, userService services.UserService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		userService:       userService,
	}
}

func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.SubmissionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.submissionService.Create(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.submissionService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) GetByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.submissionService.GetByProjectID(r.Context(), projectID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, submission)
}

// Update snapshots the previous content as a version before applying changes.
func (h *SubmissionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.SubmissionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.submissionService.Update(r.Context(), id, currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, submission)
}

// Evaluate records a judge's scores and recomputes the aggregate.
func (h *SubmissionHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	judge, err := h.currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.ScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	submission, err := h.submissionService.Evaluate(r.Context(), id, judge, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "submissionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	versions, err := h.submissionService.ListVersions(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, versions)
}

func (h *SubmissionHandler) currentUser(r *http.Request) (*models.User, error) {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return h.userService.GetByID(r.Context(), id)
}
