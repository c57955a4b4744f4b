package handlers

import (
	"errors"
	"net/http"

	"github.com/hackfest-dev/hackfest-server/middleware"
	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
	userService    services.UserService
}

func NewProjectHandler(projectService services.ProjectService, userService services.UserService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		userService:    userService,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.ProjectInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if hackathonID := queryInt(r, "hackathon_id", 0); hackathonID > 0 {
		projects, err := h.projectService.ListByHackathon(r.Context(), hackathonID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		successResponse(w, http.StatusOK, projects)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		badRequestResponse(w, r, errors.New("hackathon_id query parameter is required"))
		return
	}

	projects, err := h.projectService.ListByUser(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	successResponse(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.ProjectInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), id, currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.projectService.Delete(r.Context(), id, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, jsonResponse{"deleted": true})
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		UserID int `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID <= 0 {
		badRequestResponse(w, r, errors.New("user_id is required"))
		return
	}

	project, err := h.projectService.AddMember(r.Context(), id, currentUserID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusCreated, project)
}

func (h *ProjectHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	targetUserID, err := idParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	project, err := h.projectService.RemoveMember(r.Context(), id, currentUserID, targetUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, project)
}

// ChangeStatus moves a project through its lifecycle. Review statuses are
// restricted to judges and admins by the service.
func (h *ProjectHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUser, err := h.currentUser(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Status models.ProjectStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	project, err := h.projectService.ChangeStatus(r.Context(), id, currentUser, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, project)
}

func (h *ProjectHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "projectID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	file, header, err := formFile(w, r, "media")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	project, err := h.projectService.UploadMedia(r.Context(), id, currentUserID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	successResponse(w, http.StatusOK, project)
}

func (h *ProjectHandler) currentUser(r *http.Request) (*models.User, error) {
	id, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return h.userService.GetByID(r.Context(), id)
}
