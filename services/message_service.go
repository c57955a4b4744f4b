package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
)

const defaultHistoryLimit = 50

type MessageService interface {
	// Post persists a chat message for a room the sender belongs to and
	// maintains the parent's denormalized reply counter.
	Post(ctx context.Context, senderID int, room, content string, parentID *int) (*models.Message, error)
	History(ctx context.Context, userID int, room string, limit int) ([]models.Message, error)
	Delete(ctx context.Context, messageID, currentUserID int) error
	MarkDelivered(ctx context.Context, messageID int) error
	CanJoinRoom(ctx context.Context, userID int, room string) (bool, error)
}

type messageService struct {
	messageRepo repositories.MessageRepository
	teamRepo    repositories.TeamRepository
	projectRepo repositories.ProjectRepository
}

func NewMessageService(
	messageRepo repositories.MessageRepository,
	teamRepo repositories.TeamRepository,
	projectRepo repositories.ProjectRepository,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		teamRepo:    teamRepo,
		projectRepo: projectRepo,
	}
}

func (s *messageService) Post(ctx context.Context, senderID int, room, content string, parentID *int) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMessageEmpty
	}

	allowed, err := s.CanJoinRoom(ctx, senderID, room)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotRoomMember
	}

	if parentID != nil {
		parent, parentErr := s.messageRepo.GetByID(ctx, *parentID)
		if parentErr != nil {
			if errors.Is(parentErr, repositories.ErrMessageNotFound) {
				return nil, ErrMessageNotFound
			}
			return nil, fmt.Errorf("failed to get parent message %d: %w", *parentID, parentErr)
		}
		if parent.Room != room {
			return nil, ErrMessageNotFound
		}
	}

	msg := &models.Message{
		Room:     room,
		SenderID: senderID,
		Content:  content,
		ParentID: parentID,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		if errors.Is(err, repositories.ErrMessageParentInvalid) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if parentID != nil {
		if incErr := s.messageRepo.IncrementReplyCount(ctx, *parentID); incErr != nil {
			// The reply exists either way; the counter is denormalized
			// and can drift.
			return msg, nil
		}
	}

	return msg, nil
}

func (s *messageService) History(ctx context.Context, userID int, room string, limit int) ([]models.Message, error) {
	allowed, err := s.CanJoinRoom(ctx, userID, room)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotRoomMember
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	messages, err := s.messageRepo.ListByRoom(ctx, room, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for room %s: %w", room, err)
	}
	return messages, nil
}

func (s *messageService) Delete(ctx context.Context, messageID, currentUserID int) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to get message %d: %w", messageID, err)
	}
	if msg.SenderID != currentUserID {
		return ErrForbiddenOperation
	}

	if err := s.messageRepo.SoftDelete(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}
	return nil
}

func (s *messageService) MarkDelivered(ctx context.Context, messageID int) error {
	return s.messageRepo.MarkDelivered(ctx, messageID)
}

// CanJoinRoom checks room membership: team rooms require an accepted
// team member slot, project rooms require project membership.
func (s *messageService) CanJoinRoom(ctx context.Context, userID int, room string) (bool, error) {
	switch {
	case strings.HasPrefix(room, "team_"):
		teamID, err := strconv.Atoi(strings.TrimPrefix(room, "team_"))
		if err != nil {
			return false, ErrValidationFailed
		}
		team, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return false, ErrTeamNotFound
			}
			return false, fmt.Errorf("failed to get team %d: %w", teamID, err)
		}
		member := team.MemberByUserID(userID)
		return member != nil && member.Status == models.InvitationAccepted, nil

	case strings.HasPrefix(room, "project_"):
		projectID, err := strconv.Atoi(strings.TrimPrefix(room, "project_"))
		if err != nil {
			return false, ErrValidationFailed
		}
		project, err := s.projectRepo.GetByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, repositories.ErrProjectNotFound) {
				return false, ErrProjectNotFound
			}
			return false, fmt.Errorf("failed to get project %d: %w", projectID, err)
		}
		return project.HasMember(userID), nil

	default:
		return false, ErrValidationFailed
	}
}
