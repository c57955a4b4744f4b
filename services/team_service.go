package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
)

// TeamMailer sends the best-effort invite mail. Failures never fail the
// inviting request.
type TeamMailer interface {
	SendTeamInviteEmail(to, teamName string) error
}

type TeamService interface {
	Create(ctx context.Context, currentUserID int, input TeamInput) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByHackathon(ctx context.Context, hackathonID int) ([]models.Team, error)
	Update(ctx context.Context, teamID, currentUserID int, input TeamInput) (*models.Team, error)
	Delete(ctx context.Context, teamID, currentUserID int) error

	Invite(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.Team, error)
	Respond(ctx context.Context, teamID, currentUserID int, accept bool) (*models.Team, error)
	RemoveMember(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.Team, error)
	PromoteLeader(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.Team, error)
}

type TeamInput struct {
	HackathonID  int      `json:"hackathon_id"`
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	MaxMembers   int      `json:"max_members"`
	SkillsWanted []string `json:"skills_wanted"`
}

type teamService struct {
	teamRepo      repositories.TeamRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
	mailer        TeamMailer
	logger        *slog.Logger
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	mailer TeamMailer,
	logger *slog.Logger,
) TeamService {
	return &teamService{
		teamRepo:      teamRepo,
		userRepo:      userRepo,
		notifications: notifications,
		mailer:        mailer,
		logger:        logger,
	}
}

func (s *teamService) Create(ctx context.Context, currentUserID int, input TeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if input.MaxMembers <= 0 {
		return nil, ErrInvalidCapacity
	}

	team := &models.Team{
		HackathonID:  input.HackathonID,
		Name:         input.Name,
		Description:  input.Description,
		MaxMembers:   input.MaxMembers,
		SkillsWanted: input.SkillsWanted,
	}
	// The creator occupies the first slot as the accepted leader, so
	// the team is looking for members whenever maxMembers > 1.
	team.IsLookingForMembers = input.MaxMembers > 1

	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrHackathonNotFound):
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	now := time.Now()
	creator := &models.TeamMember{
		TeamID:   team.ID,
		UserID:   currentUserID,
		Status:   models.InvitationAccepted,
		IsLeader: true,
		JoinedAt: &now,
	}
	if err := s.teamRepo.AddMember(ctx, creator); err != nil {
		return nil, fmt.Errorf("failed to add creator to team %d: %w", team.ID, err)
	}

	return s.reload(ctx, team.ID)
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	return s.reload(ctx, id)
}

func (s *teamService) ListByHackathon(ctx context.Context, hackathonID int) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for hackathon %d: %w", hackathonID, err)
	}
	return teams, nil
}

func (s *teamService) Update(ctx context.Context, teamID, currentUserID int, input TeamInput) (*models.Team, error) {
	team, err := s.reload(ctx, teamID)
	if err != nil {
		return nil, err
	}

	member := team.MemberByUserID(currentUserID)
	if member == nil || member.Status != models.InvitationAccepted || !member.IsLeader {
		return nil, ErrNotTeamLeader
	}

	if input.Name != "" {
		team.Name = input.Name
	}
	if input.Description != nil {
		team.Description = input.Description
	}
	if input.MaxMembers > 0 {
		if input.MaxMembers < team.AcceptedCount() {
			return nil, ErrInvalidCapacity
		}
		team.MaxMembers = input.MaxMembers
	}
	if input.SkillsWanted != nil {
		team.SkillsWanted = input.SkillsWanted
	}

	return s.save(ctx, team)
}

// Delete removes a team and all its member slots. Leader only.
func (s *teamService) Delete(ctx context.Context, teamID, currentUserID int) error {
	team, err := s.reload(ctx, teamID)
	if err != nil {
		return err
	}

	member := team.MemberByUserID(currentUserID)
	if member == nil || member.Status != models.InvitationAccepted || !member.IsLeader {
		return ErrNotTeamLeader
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team %d: %w", teamID, err)
	}
	return nil
}

// Invite adds a pending slot for the target account. Only an accepted
// member may invite, the team must have room, and a previously rejected
// slot is reset to pending rather than duplicated.
func (s *teamService) Invite(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.Team, error) {
	team, err := s.reload(ctx, teamID)
	if err != nil {
		return nil, err
	}

	caller := team.MemberByUserID(currentUserID)
	if caller == nil || caller.Status != models.InvitationAccepted {
		return nil, ErrNotTeamMember
	}

	if team.AcceptedCount() >= team.MaxMembers {
		return nil, ErrTeamFull
	}

	target, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", targetUserID, err)
	}

	if slot := team.MemberByUserID(targetUserID); slot != nil {
		switch slot.Status {
		case models.InvitationAccepted:
			return nil, ErrAlreadyMember
		case models.InvitationPending:
			return nil, ErrAlreadyInvited
		case models.InvitationRejected:
			// Re-invite: the rejected slot goes back to pending.
			slot.Status = models.InvitationPending
			slot.JoinedAt = nil
			if err := s.teamRepo.UpdateMember(ctx, slot); err != nil {
				return nil, fmt.Errorf("failed to reset rejected slot for user %d: %w", targetUserID, err)
			}
		}
	} else {
		invite := &models.TeamMember{
			TeamID: teamID,
			UserID: targetUserID,
			Status: models.InvitationPending,
		}
		if err := s.teamRepo.AddMember(ctx, invite); err != nil {
			if errors.Is(err, repositories.ErrTeamMemberConflict) {
				return nil, ErrAlreadyInvited
			}
			return nil, fmt.Errorf("failed to add invite for user %d: %w", targetUserID, err)
		}
	}

	s.notifications.FanOut(ctx, []int{targetUserID}, models.Notification{
		Type:  models.NotificationTeamInvite,
		Title: "Team invitation",
		Body:  fmt.Sprintf("You have been invited to join team %q", team.Name),
		Metadata: map[string]interface{}{
			"team_id":    team.ID,
			"invited_by": currentUserID,
		},
	}, "")

	if s.mailer != nil {
		if mailErr := s.mailer.SendTeamInviteEmail(target.Email, team.Name); mailErr != nil {
			s.logger.Warn("failed to send invite email",
				slog.String("email", target.Email), slog.Any("error", mailErr))
		}
	}

	return s.reload(ctx, teamID)
}

// Respond flips the caller's own pending slot to accepted or rejected.
// Accepting stamps the join timestamp.
func (s *teamService) Respond(ctx context.Context, teamID, currentUserID int, accept bool) (*models.Team, error) {
	team, err := s.reload(ctx, teamID)
	if err != nil {
		return nil, err
	}

	slot := team.MemberByUserID(currentUserID)
	if slot == nil || slot.Status != models.InvitationPending {
		return nil, ErrNotInvited
	}

	if accept {
		if team.AcceptedCount() >= team.MaxMembers {
			return nil, ErrTeamFull
		}
		now := time.Now()
		slot.Status = models.InvitationAccepted
		slot.JoinedAt = &now
	} else {
		slot.Status = models.InvitationRejected
	}

	if err := s.teamRepo.UpdateMember(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to update slot for user %d: %w", currentUserID, err)
	}

	team, err = s.save(ctx, team)
	if err != nil {
		return nil, err
	}

	s.notifications.FanOut(ctx, s.leaderIDs(team), models.Notification{
		Type:  models.NotificationInviteResponse,
		Title: "Invitation response",
		Body:  fmt.Sprintf("A member responded to the invitation for team %q", team.Name),
		Metadata: map[string]interface{}{
			"team_id":  team.ID,
			"user_id":  currentUserID,
			"accepted": accept,
		},
	}, fmt.Sprintf("team_%d", team.ID))

	return team, nil
}

// RemoveMember deletes a member slot outright. The removal that would
// leave the team without an accepted leader is rejected.
func (s *teamService) RemoveMember(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.Team, error) {
	team, err := s.reload(ctx, teamID)
	if err != nil {
		return nil, err
	}

	caller := team.MemberByUserID(currentUserID)
	isLeader := caller != nil && caller.Status == models.InvitationAccepted && caller.IsLeader
	if currentUserID != targetUserID && !isLeader {
		return nil, ErrNotTeamLeader
	}

	slot := team.MemberByUserID(targetUserID)
	if slot == nil {
		return nil, ErrMemberNotFound
	}

	if slot.Status == models.InvitationAccepted && slot.IsLeader && team.AcceptedLeaderCount() <= 1 {
		return nil, ErrLastLeader
	}

	if err := s.teamRepo.RemoveMember(ctx, slot.ID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to remove member %d from team %d: %w", targetUserID, teamID, err)
	}

	team, err = s.save(ctx, team)
	if err != nil {
		return nil, err
	}

	s.notifications.FanOut(ctx, s.acceptedIDs(team), models.Notification{
		Type:  models.NotificationTeamUpdate,
		Title: "Team update",
		Body:  fmt.Sprintf("Membership of team %q changed", team.Name),
		Metadata: map[string]interface{}{
			"team_id":         team.ID,
			"removed_user_id": targetUserID,
		},
	}, fmt.Sprintf("team_%d", team.ID))

	return team, nil
}

func (s *teamService) PromoteLeader(ctx context.Context, teamID, currentUserID, targetUserID int) (*models.Team, error) {
	team, err := s.reload(ctx, teamID)
	if err != nil {
		return nil, err
	}

	caller := team.MemberByUserID(currentUserID)
	if caller == nil || caller.Status != models.InvitationAccepted || !caller.IsLeader {
		return nil, ErrNotTeamLeader
	}

	slot := team.MemberByUserID(targetUserID)
	if slot == nil || slot.Status != models.InvitationAccepted {
		return nil, ErrMemberNotFound
	}
	if slot.IsLeader {
		return s.reload(ctx, teamID)
	}

	slot.IsLeader = true
	if err := s.teamRepo.UpdateMember(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to promote member %d: %w", targetUserID, err)
	}

	return s.reload(ctx, teamID)
}

// reload fetches the team with members and maps repo errors.
func (s *teamService) reload(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

// save refreshes the members list, recomputes the derived fields and
// persists the team row.
func (s *teamService) save(ctx context.Context, team *models.Team) (*models.Team, error) {
	members, err := s.teamRepo.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload members for team %d: %w", team.ID, err)
	}
	team.Members = members
	team.RecomputeDerived()

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to save team %d: %w", team.ID, err)
	}
	return team, nil
}

func (s *teamService) leaderIDs(team *models.Team) []int {
	ids := make([]int, 0, 1)
	for _, m := range team.Members {
		if m.Status == models.InvitationAccepted && m.IsLeader {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

func (s *teamService) acceptedIDs(team *models.Team) []int {
	ids := make([]int, 0, len(team.Members))
	for _, m := range team.Members {
		if m.Status == models.InvitationAccepted {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}
