package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackfest-dev/hackfest-server/metrics"
	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
	"golang.org/x/sync/errgroup"
)

// fanOutConcurrency bounds parallel notification inserts per fan-out.
const fanOutConcurrency = 8

// Broadcaster pushes an event to every socket joined to a room.
// Implemented by chat.Hub.
type Broadcaster interface {
	BroadcastToRoom(room string, message interface{})
}

type NotificationService interface {
	ListOwn(ctx context.Context, userID int, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
	Delete(ctx context.Context, id, userID int) error

	// FanOut writes one notification per recipient as an unordered
	// batch of independent inserts. Individual failures are counted
	// and logged, never returned: partial fan-out is accepted.
	FanOut(ctx context.Context, recipients []int, template models.Notification, room string)

	CleanupExpired(ctx context.Context) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	hub              Broadcaster
	logger           *slog.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	hub Broadcaster,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *notificationService) ListOwn(ctx context.Context, userID int, limit int) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID int) error {
	if err := s.notificationRepo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read for user %d: %w", userID, err)
	}
	return nil
}

func (s *notificationService) Delete(ctx context.Context, id, userID int) error {
	if err := s.notificationRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to delete notification %d: %w", id, err)
	}
	return nil
}

func (s *notificationService) FanOut(ctx context.Context, recipients []int, template models.Notification, room string) {
	now := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutConcurrency)

	for _, userID := range recipients {
		n := template
		n.UserID = userID
		n.ExpiresAt = now.Add(models.NotificationTTL)

		g.Go(func() error {
			if err := s.notificationRepo.Create(gCtx, &n); err != nil {
				metrics.NotificationsFailed.Inc()
				s.logger.Warn("notification insert dropped during fan-out",
					slog.Int("user_id", n.UserID),
					slog.String("type", string(n.Type)),
					slog.Any("error", err))
				return nil
			}
			metrics.NotificationsSent.Inc()
			return nil
		})
	}
	// Goroutines always return nil: fan-out never fails the caller.
	_ = g.Wait()

	if room != "" && s.hub != nil {
		s.hub.BroadcastToRoom(room, map[string]interface{}{
			"type":    "NOTIFICATION",
			"payload": template,
		})
	}
}

func (s *notificationService) CleanupExpired(ctx context.Context) error {
	deleted, err := s.notificationRepo.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("expired notifications removed", slog.Int64("count", deleted))
	}
	return nil
}
