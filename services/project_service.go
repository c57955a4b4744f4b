package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
	"github.com/hackfest-dev/hackfest-server/storage"
)

// ProjectMailer sends the best-effort status mail when a review verdict
// lands. Failures never fail the request.
type ProjectMailer interface {
	SendSubmissionStatusEmail(to, projectName, status string) error
}

type ProjectService interface {
	Create(ctx context.Context, currentUserID int, input ProjectInput) (*models.Project, error)
	GetByID(ctx context.Context, id int) (*models.Project, error)
	ListByHackathon(ctx context.Context, hackathonID int) ([]models.Project, error)
	ListByUser(ctx context.Context, userID int) ([]models.Project, error)
	Update(ctx context.Context, projectID, currentUserID int, input ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, projectID, currentUserID int) error
	AddMember(ctx context.Context, projectID, currentUserID, targetUserID int) (*models.Project, error)
	RemoveMember(ctx context.Context, projectID, currentUserID, targetUserID int) (*models.Project, error)
	ChangeStatus(ctx context.Context, projectID int, currentUser *models.User, status models.ProjectStatus) (*models.Project, error)
	UploadMedia(ctx context.Context, projectID, currentUserID int, contentType string, file io.Reader) (*models.Project, error)
}

type ProjectInput struct {
	HackathonID int     `json:"hackathon_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	RepoURL     *string `json:"repo_url"`
	DemoURL     *string `json:"demo_url"`
}

// Statuses only judges and admins may assign.
var reviewStatuses = map[models.ProjectStatus]bool{
	models.ProjectUnderReview: true,
	models.ProjectSelected:    true,
	models.ProjectWinner:      true,
	models.ProjectCompleted:   true,
	models.ProjectRejected:    true,
}

type projectService struct {
	projectRepo   repositories.ProjectRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
	mailer        ProjectMailer
	uploader      storage.FileUploader
	logger        *slog.Logger
}

func NewProjectService(
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	mailer ProjectMailer,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ProjectService {
	return &projectService{
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		notifications: notifications,
		mailer:        mailer,
		uploader:      uploader,
		logger:        logger,
	}
}

func (s *projectService) Create(ctx context.Context, currentUserID int, input ProjectInput) (*models.Project, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}

	project := &models.Project{
		HackathonID: input.HackathonID,
		Name:        input.Name,
		Description: input.Description,
		RepoURL:     input.RepoURL,
		DemoURL:     input.DemoURL,
		Status:      models.ProjectDraft,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	owner := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    currentUserID,
		Role:      models.ProjectRoleOwner,
	}
	if err := s.projectRepo.AddMember(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to add owner to project %d: %w", project.ID, err)
	}

	return s.reload(ctx, project.ID)
}

func (s *projectService) GetByID(ctx context.Context, id int) (*models.Project, error) {
	return s.reload(ctx, id)
}

func (s *projectService) ListByHackathon(ctx context.Context, hackathonID int) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for hackathon %d: %w", hackathonID, err)
	}
	for i := range projects {
		s.populateMediaURL(&projects[i])
	}
	return projects, nil
}

func (s *projectService) ListByUser(ctx context.Context, userID int) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for user %d: %w", userID, err)
	}
	for i := range projects {
		s.populateMediaURL(&projects[i])
	}
	return projects, nil
}

func (s *projectService) Update(ctx context.Context, projectID, currentUserID int, input ProjectInput) (*models.Project, error) {
	project, err := s.reload(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasMember(currentUserID) {
		return nil, ErrNotProjectMember
	}

	if input.Name != "" {
		project.Name = input.Name
	}
	if input.Description != nil {
		project.Description = input.Description
	}
	if input.RepoURL != nil {
		project.RepoURL = input.RepoURL
	}
	if input.DemoURL != nil {
		project.DemoURL = input.DemoURL
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project %d: %w", projectID, err)
	}

	s.notifyMembers(ctx, project, models.NotificationProjectUpdate, "Project updated",
		fmt.Sprintf("Project %q was updated", project.Name))

	return project, nil
}

// Delete removes a project and its member rows. Owner only.
func (s *projectService) Delete(ctx context.Context, projectID, currentUserID int) error {
	project, err := s.reload(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.IsOwner(currentUserID) {
		return ErrNotProjectOwner
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project %d: %w", projectID, err)
	}

	if project.MediaKey != nil {
		if err := s.uploader.Delete(ctx, *project.MediaKey); err != nil {
			s.logger.Warn("failed to delete project media", "project_id", projectID, "key", *project.MediaKey, "error", err)
		}
	}
	return nil
}

func (s *projectService) AddMember(ctx context.Context, projectID, currentUserID, targetUserID int) (*models.Project, error) {
	project, err := s.reload(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(currentUserID) {
		return nil, ErrNotProjectOwner
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    targetUserID,
		Role:      models.ProjectRoleMember,
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, repositories.ErrProjectMemberConflict):
			return nil, ErrAlreadyMember
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to add member %d to project %d: %w", targetUserID, projectID, err)
	}

	return s.reload(ctx, projectID)
}

func (s *projectService) RemoveMember(ctx context.Context, projectID, currentUserID, targetUserID int) (*models.Project, error) {
	project, err := s.reload(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(currentUserID) && currentUserID != targetUserID {
		return nil, ErrNotProjectOwner
	}
	if project.IsOwner(targetUserID) {
		return nil, ErrForbiddenOperation
	}

	if err := s.projectRepo.RemoveMember(ctx, projectID, targetUserID); err != nil {
		if errors.Is(err, repositories.ErrProjectMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to remove member %d from project %d: %w", targetUserID, projectID, err)
	}

	return s.reload(ctx, projectID)
}

// ChangeStatus applies a status transition. The submitted timestamp is
// stamped on the first transition into submitted and never overwritten.
func (s *projectService) ChangeStatus(ctx context.Context, projectID int, currentUser *models.User, status models.ProjectStatus) (*models.Project, error) {
	project, err := s.reload(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if reviewStatuses[status] {
		if currentUser.Role != models.RoleJudge && currentUser.Role != models.RoleAdmin {
			return nil, ErrForbiddenOperation
		}
	} else if !project.HasMember(currentUser.ID) {
		return nil, ErrNotProjectMember
	}

	if !project.Status.CanTransition(status) {
		return nil, ErrInvalidStatusChange
	}

	project.Status = status
	if status == models.ProjectSubmitted && project.SubmittedAt == nil {
		now := time.Now()
		project.SubmittedAt = &now
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project %d status: %w", projectID, err)
	}

	s.notifyMembers(ctx, project, models.NotificationProjectUpdate, "Project status changed",
		fmt.Sprintf("Project %q is now %s", project.Name, status))

	// Review verdicts additionally go out by mail, like team invites.
	if reviewStatuses[status] {
		s.mailStatusToMembers(ctx, project, status)
	}

	return project, nil
}

func (s *projectService) mailStatusToMembers(ctx context.Context, project *models.Project, status models.ProjectStatus) {
	if s.mailer == nil {
		return
	}
	for _, m := range project.Members {
		user, err := s.userRepo.GetByID(ctx, m.UserID)
		if err != nil {
			s.logger.Warn("failed to load member for status mail", "project_id", project.ID, "user_id", m.UserID, "error", err)
			continue
		}
		if err := s.mailer.SendSubmissionStatusEmail(user.Email, project.Name, string(status)); err != nil {
			s.logger.Warn("failed to send status mail", "project_id", project.ID, "email", user.Email, "error", err)
		}
	}
}

func (s *projectService) UploadMedia(ctx context.Context, projectID, currentUserID int, contentType string, file io.Reader) (*models.Project, error) {
	project, err := s.reload(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasMember(currentUserID) {
		return nil, ErrNotProjectMember
	}

	key := fmt.Sprintf("projects/project_%d_%d", projectID, time.Now().Unix())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media for project %d: %w", projectID, err)
	}

	oldKey := project.MediaKey
	project.MediaKey = &result.Key
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to persist media key for project %d: %w", projectID, err)
	}
	if oldKey != nil {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced project media", "project_id", projectID, "key", *oldKey, "error", err)
		}
	}

	s.populateMediaURL(project)
	return project, nil
}

func (s *projectService) reload(ctx context.Context, id int) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	s.populateMediaURL(project)
	return project, nil
}

func (s *projectService) notifyMembers(ctx context.Context, project *models.Project, kind models.NotificationType, title, body string) {
	ids := make([]int, 0, len(project.Members))
	for _, m := range project.Members {
		ids = append(ids, m.UserID)
	}
	s.notifications.FanOut(ctx, ids, models.Notification{
		Type:  kind,
		Title: title,
		Body:  body,
		Metadata: map[string]interface{}{
			"project_id": project.ID,
			"status":     string(project.Status),
		},
	}, fmt.Sprintf("project_%d", project.ID))
}

func (s *projectService) populateMediaURL(project *models.Project) {
	if project.MediaKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*project.MediaKey)
		project.MediaURL = &url
	}
}
