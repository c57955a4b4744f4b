package services

import (
	"context"
	"fmt"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
)

const recentNotificationsLimit = 5

type DashboardService interface {
	ForUser(ctx context.Context, userID int) (*models.Dashboard, error)
}

type dashboardService struct {
	hackathonRepo    repositories.HackathonRepository
	teamRepo         repositories.TeamRepository
	projectRepo      repositories.ProjectRepository
	notificationRepo repositories.NotificationRepository
}

func NewDashboardService(
	hackathonRepo repositories.HackathonRepository,
	teamRepo repositories.TeamRepository,
	projectRepo repositories.ProjectRepository,
	notificationRepo repositories.NotificationRepository,
) DashboardService {
	return &dashboardService{
		hackathonRepo:    hackathonRepo,
		teamRepo:         teamRepo,
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
	}
}

func (s *dashboardService) ForUser(ctx context.Context, userID int) (*models.Dashboard, error) {
	hackathons, err := s.hackathonRepo.CountByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count hackathons for user %d: %w", userID, err)
	}

	teams, err := s.teamRepo.CountTeamsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams for user %d: %w", userID, err)
	}

	pendingInvites, err := s.teamRepo.CountPendingInvites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending invites for user %d: %w", userID, err)
	}

	projects, err := s.projectRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for user %d: %w", userID, err)
	}

	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications for user %d: %w", userID, err)
	}

	recent, err := s.notificationRepo.ListByUser(ctx, userID, recentNotificationsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent notifications for user %d: %w", userID, err)
	}

	return &models.Dashboard{
		HackathonCount:      hackathons,
		TeamCount:           teams,
		ProjectCount:        len(projects),
		PendingInviteCount:  pendingInvites,
		UnreadNotifications: unread,
		RecentNotifications: recent,
		Projects:            projects,
	}, nil
}
