package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
)

type SubmissionService interface {
	Create(ctx context.Context, currentUserID int, input SubmissionInput) (*models.Submission, error)
	GetByID(ctx context.Context, id int) (*models.Submission, error)
	GetByProjectID(ctx context.Context, projectID int) (*models.Submission, error)
	Update(ctx context.Context, submissionID, currentUserID int, input SubmissionInput) (*models.Submission, error)
	Evaluate(ctx context.Context, submissionID int, judge *models.User, input ScoreInput) (*models.Submission, error)
	ListVersions(ctx context.Context, submissionID int) ([]models.SubmissionVersion, error)
}

type SubmissionInput struct {
	ProjectID int     `json:"project_id"`
	Summary   string  `json:"summary"`
	VideoURL  *string `json:"video_url"`
}

type ScoreInput struct {
	Innovation   int     `json:"innovation"`
	Technical    int     `json:"technical"`
	Design       int     `json:"design"`
	Presentation int     `json:"presentation"`
	Impact       int     `json:"impact"`
	Comment      *string `json:"comment"`
}

type submissionService struct {
	submissionRepo repositories.SubmissionRepository
	projectRepo    repositories.ProjectRepository
	notifications  NotificationService
}

func NewSubmissionService(
	submissionRepo repositories.SubmissionRepository,
	projectRepo repositories.ProjectRepository,
	notifications NotificationService,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		projectRepo:    projectRepo,
		notifications:  notifications,
	}
}

func (s *submissionService) Create(ctx context.Context, currentUserID int, input SubmissionInput) (*models.Submission, error) {
	if input.Summary == "" {
		return nil, ErrValidationFailed
	}

	project, err := s.projectRepo.GetByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project %d: %w", input.ProjectID, err)
	}
	if !project.HasMember(currentUserID) {
		return nil, ErrNotProjectMember
	}

	sub := &models.Submission{
		ProjectID: input.ProjectID,
		Summary:   input.Summary,
		VideoURL:  input.VideoURL,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSubmissionConflict):
			return nil, ErrSubmissionExists
		case errors.Is(err, repositories.ErrProjectNotFound):
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return sub, nil
}

func (s *submissionService) GetByID(ctx context.Context, id int) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission %d: %w", id, err)
	}
	return sub, nil
}

func (s *submissionService) GetByProjectID(ctx context.Context, projectID int) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubmissionNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission for project %d: %w", projectID, err)
	}
	return sub, nil
}

// Update overwrites the submission content after appending the previous
// content to the append-only version history.
func (s *submissionService) Update(ctx context.Context, submissionID, currentUserID int, input SubmissionInput) (*models.Submission, error) {
	sub, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	project, err := s.projectRepo.GetByID(ctx, sub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", sub.ProjectID, err)
	}
	if !project.HasMember(currentUserID) {
		return nil, ErrNotProjectMember
	}

	version := &models.SubmissionVersion{
		SubmissionID: sub.ID,
		Summary:      sub.Summary,
		VideoURL:     sub.VideoURL,
	}
	if err := s.submissionRepo.AppendVersion(ctx, version); err != nil {
		return nil, fmt.Errorf("failed to append version for submission %d: %w", sub.ID, err)
	}

	if input.Summary != "" {
		sub.Summary = input.Summary
	}
	if input.VideoURL != nil {
		sub.VideoURL = input.VideoURL
	}
	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update submission %d: %w", sub.ID, err)
	}
	return sub, nil
}

// Evaluate records one judge's score vector and recomputes the aggregate
// as the mean of the five per-criterion means. The first evaluation
// moves the project from submitted to under_review.
func (s *submissionService) Evaluate(ctx context.Context, submissionID int, judge *models.User, input ScoreInput) (*models.Submission, error) {
	if judge.Role != models.RoleJudge && judge.Role != models.RoleAdmin {
		return nil, ErrNotJudge
	}

	sub, err := s.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	score := &models.JudgeScore{
		SubmissionID: submissionID,
		JudgeID:      judge.ID,
		Innovation:   input.Innovation,
		Technical:    input.Technical,
		Design:       input.Design,
		Presentation: input.Presentation,
		Impact:       input.Impact,
		Comment:      input.Comment,
	}
	if !score.Valid() {
		return nil, ErrInvalidScore
	}

	if err := s.submissionRepo.UpsertScore(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to record score for submission %d: %w", submissionID, err)
	}

	// Recompute from the fresh judge list; the read and the write are
	// separate operations, concurrent evaluations may race.
	scores, err := s.submissionRepo.ListScores(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for submission %d: %w", submissionID, err)
	}
	avg := models.AggregateScore(scores)
	if err := s.submissionRepo.UpdateAverageScore(ctx, submissionID, avg); err != nil {
		return nil, fmt.Errorf("failed to persist average for submission %d: %w", submissionID, err)
	}
	sub.Scores = scores
	sub.AverageScore = avg

	project, err := s.projectRepo.GetByID(ctx, sub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", sub.ProjectID, err)
	}
	if project.Status == models.ProjectSubmitted {
		project.Status = models.ProjectUnderReview
		if err := s.projectRepo.Update(ctx, project); err != nil {
			return nil, fmt.Errorf("failed to move project %d under review: %w", project.ID, err)
		}
	}

	ids := make([]int, 0, len(project.Members))
	for _, m := range project.Members {
		ids = append(ids, m.UserID)
	}
	s.notifications.FanOut(ctx, ids, models.Notification{
		Type:  models.NotificationEvaluation,
		Title: "New evaluation",
		Body:  fmt.Sprintf("Project %q received a judge evaluation", project.Name),
		Metadata: map[string]interface{}{
			"project_id":    project.ID,
			"submission_id": sub.ID,
			"average_score": avg,
		},
	}, fmt.Sprintf("project_%d", project.ID))

	return sub, nil
}

func (s *submissionService) ListVersions(ctx context.Context, submissionID int) ([]models.SubmissionVersion, error) {
	if _, err := s.GetByID(ctx, submissionID); err != nil {
		return nil, err
	}
	versions, err := s.submissionRepo.ListVersions(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions for submission %d: %w", submissionID, err)
	}
	return versions, nil
}
