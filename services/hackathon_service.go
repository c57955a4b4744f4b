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

type HackathonService interface {
	Create(ctx context.Context, currentUser *models.User, input HackathonInput) (*models.Hackathon, error)
	GetByID(ctx context.Context, id int) (*models.Hackathon, error)
	Update(ctx context.Context, id int, currentUser *models.User, input HackathonInput) (*models.Hackathon, error)
	Delete(ctx context.Context, id int, currentUser *models.User) error
	List(ctx context.Context, filter repositories.HackathonFilter) ([]models.Hackathon, error)
	Register(ctx context.Context, hackathonID, userID int) error
	UploadBanner(ctx context.Context, id int, currentUser *models.User, contentType string, file io.Reader) (*models.Hackathon, error)
	RefreshStatuses(ctx context.Context) error
}

type HackathonInput struct {
	Name              string    `json:"name"`
	Description       *string   `json:"description"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	JudgingEnd        time.Time `json:"judging_end"`
	Public            *bool     `json:"public"`
	MaxParticipants   int       `json:"max_participants"`
}

type hackathonService struct {
	hackathonRepo repositories.HackathonRepository
	uploader      storage.FileUploader
	notifications NotificationService
	logger        *slog.Logger
}

func NewHackathonService(
	hackathonRepo repositories.HackathonRepository,
	uploader storage.FileUploader,
	notifications NotificationService,
	logger *slog.Logger,
) HackathonService {
	return &hackathonService{
		hackathonRepo: hackathonRepo,
		uploader:      uploader,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *hackathonService) Create(ctx context.Context, currentUser *models.User, input HackathonInput) (*models.Hackathon, error) {
	if currentUser.Role != models.RoleAdmin {
		return nil, ErrNotAdmin
	}
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if err := validateDateOrder(input); err != nil {
		return nil, err
	}
	if input.MaxParticipants <= 0 {
		return nil, ErrInvalidCapacity
	}

	public := true
	if input.Public != nil {
		public = *input.Public
	}

	h := &models.Hackathon{
		Name:              input.Name,
		Description:       input.Description,
		OrganizerID:       currentUser.ID,
		RegistrationStart: input.RegistrationStart,
		RegistrationEnd:   input.RegistrationEnd,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		JudgingEnd:        input.JudgingEnd,
		Public:            public,
		MaxParticipants:   input.MaxParticipants,
	}
	h.Status = h.CurrentStatus(time.Now())

	if err := s.hackathonRepo.Create(ctx, h); err != nil {
		if errors.Is(err, repositories.ErrHackathonNameConflict) {
			return nil, ErrHackathonNameConflict
		}
		return nil, fmt.Errorf("failed to create hackathon: %w", err)
	}
	return h, nil
}

func (s *hackathonService) GetByID(ctx context.Context, id int) (*models.Hackathon, error) {
	h, err := s.hackathonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to get hackathon %d: %w", id, err)
	}

	s.refreshStatus(ctx, h)
	s.populateBannerURL(h)

	count, err := s.hackathonRepo.CountParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants for hackathon %d: %w", id, err)
	}
	h.ParticipantCount = count

	return h, nil
}

func (s *hackathonService) Update(ctx context.Context, id int, currentUser *models.User, input HackathonInput) (*models.Hackathon, error) {
	if currentUser.Role != models.RoleAdmin {
		return nil, ErrNotAdmin
	}
	if err := validateDateOrder(input); err != nil {
		return nil, err
	}

	h, err := s.hackathonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to get hackathon %d: %w", id, err)
	}

	if input.Name != "" {
		h.Name = input.Name
	}
	if input.Description != nil {
		h.Description = input.Description
	}
	h.RegistrationStart = input.RegistrationStart
	h.RegistrationEnd = input.RegistrationEnd
	h.StartDate = input.StartDate
	h.EndDate = input.EndDate
	h.JudgingEnd = input.JudgingEnd
	if input.Public != nil {
		h.Public = *input.Public
	}
	if input.MaxParticipants > 0 {
		h.MaxParticipants = input.MaxParticipants
	}
	h.Status = h.CurrentStatus(time.Now())

	if err := s.hackathonRepo.Update(ctx, h); err != nil {
		if errors.Is(err, repositories.ErrHackathonNameConflict) {
			return nil, ErrHackathonNameConflict
		}
		return nil, fmt.Errorf("failed to update hackathon %d: %w", id, err)
	}

	s.populateBannerURL(h)
	return h, nil
}

func (s *hackathonService) Delete(ctx context.Context, id int, currentUser *models.User) error {
	if currentUser.Role != models.RoleAdmin {
		return ErrNotAdmin
	}
	if err := s.hackathonRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return ErrHackathonNotFound
		}
		return fmt.Errorf("failed to delete hackathon %d: %w", id, err)
	}
	return nil
}

func (s *hackathonService) List(ctx context.Context, filter repositories.HackathonFilter) ([]models.Hackathon, error) {
	hackathons, err := s.hackathonRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list hackathons: %w", err)
	}
	for i := range hackathons {
		s.refreshStatus(ctx, &hackathons[i])
		s.populateBannerURL(&hackathons[i])
	}
	return hackathons, nil
}

func (s *hackathonService) Register(ctx context.Context, hackathonID, userID int) error {
	h, err := s.hackathonRepo.GetByID(ctx, hackathonID)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return ErrHackathonNotFound
		}
		return fmt.Errorf("failed to get hackathon %d: %w", hackathonID, err)
	}

	if !h.RegistrationOpen(time.Now()) {
		return ErrRegistrationClosed
	}

	registered, err := s.hackathonRepo.IsParticipant(ctx, hackathonID, userID)
	if err != nil {
		return fmt.Errorf("failed to check registration for user %d: %w", userID, err)
	}
	if registered {
		return ErrAlreadyRegistered
	}

	count, err := s.hackathonRepo.CountParticipants(ctx, hackathonID)
	if err != nil {
		return fmt.Errorf("failed to count participants for hackathon %d: %w", hackathonID, err)
	}
	if count >= h.MaxParticipants {
		return ErrHackathonFull
	}

	if err := s.hackathonRepo.RegisterParticipant(ctx, hackathonID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return ErrAlreadyRegistered
		case errors.Is(err, repositories.ErrUserNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to register user %d for hackathon %d: %w", userID, hackathonID, err)
	}
	return nil
}

func (s *hackathonService) UploadBanner(ctx context.Context, id int, currentUser *models.User, contentType string, file io.Reader) (*models.Hackathon, error) {
	if currentUser.Role != models.RoleAdmin {
		return nil, ErrNotAdmin
	}

	h, err := s.hackathonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrHackathonNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("failed to get hackathon %d: %w", id, err)
	}

	key := fmt.Sprintf("banners/hackathon_%d_%d", id, time.Now().Unix())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload banner for hackathon %d: %w", id, err)
	}

	oldKey := h.BannerKey
	h.BannerKey = &result.Key
	if err := s.hackathonRepo.Update(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to persist banner key for hackathon %d: %w", id, err)
	}
	if oldKey != nil {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced banner", "hackathon_id", id, "key", *oldKey, "error", err)
		}
	}

	s.populateBannerURL(h)
	return h, nil
}

// RefreshStatuses walks every hackathon and persists statuses that have
// drifted from their time-derived value, fanning a notification out to
// the participants of each flipped event. Invoked from the background
// scheduler.
func (s *hackathonService) RefreshStatuses(ctx context.Context) error {
	hackathons, err := s.hackathonRepo.List(ctx, repositories.HackathonFilter{})
	if err != nil {
		return fmt.Errorf("failed to list hackathons for status refresh: %w", err)
	}

	now := time.Now()
	for i := range hackathons {
		h := &hackathons[i]
		current := h.CurrentStatus(now)
		if current == h.Status {
			continue
		}
		if err := s.hackathonRepo.UpdateStatus(ctx, h.ID, current); err != nil {
			s.logger.Error("failed to persist hackathon status",
				slog.Int("hackathon_id", h.ID),
				slog.String("status", string(current)),
				slog.Any("error", err))
			continue
		}
		s.logger.Info("hackathon status updated",
			slog.Int("hackathon_id", h.ID),
			slog.String("from", string(h.Status)),
			slog.String("to", string(current)))
		s.notifyStatusChange(ctx, h, current)
	}
	return nil
}

func (s *hackathonService) notifyStatusChange(ctx context.Context, h *models.Hackathon, status models.HackathonStatus) {
	if s.notifications == nil {
		return
	}
	ids, err := s.hackathonRepo.ListParticipantIDs(ctx, h.ID)
	if err != nil {
		s.logger.Warn("failed to list participants for status notification",
			slog.Int("hackathon_id", h.ID), slog.Any("error", err))
		return
	}
	s.notifications.FanOut(ctx, ids, models.Notification{
		Type:  models.NotificationHackathonUpdate,
		Title: "Hackathon status changed",
		Body:  fmt.Sprintf("%s is now %s", h.Name, status),
		Metadata: map[string]interface{}{
			"hackathon_id": h.ID,
			"status":       string(status),
		},
	}, "")
}

// refreshStatus recomputes the status on read and opportunistically
// persists a drifted value. Persistence failure only loses the cache
// write, so it is logged and ignored.
func (s *hackathonService) refreshStatus(ctx context.Context, h *models.Hackathon) {
	current := h.CurrentStatus(time.Now())
	if current == h.Status {
		return
	}
	h.Status = current
	if err := s.hackathonRepo.UpdateStatus(ctx, h.ID, current); err != nil {
		s.logger.Warn("failed to persist derived hackathon status",
			slog.Int("hackathon_id", h.ID), slog.Any("error", err))
	}
}

func (s *hackathonService) populateBannerURL(h *models.Hackathon) {
	if h.BannerKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*h.BannerKey)
		h.BannerURL = &url
	}
}

func validateDateOrder(input HackathonInput) error {
	if !input.RegistrationStart.Before(input.RegistrationEnd) {
		return ErrInvalidDateRange
	}
	if input.RegistrationEnd.After(input.StartDate) {
		return ErrInvalidDateRange
	}
	if !input.StartDate.Before(input.EndDate) {
		return ErrInvalidDateRange
	}
	if input.EndDate.After(input.JudgingEnd) {
		return ErrInvalidDateRange
	}
	return nil
}
