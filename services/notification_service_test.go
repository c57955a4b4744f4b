package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/hackfest-dev/hackfest-server/models"
)

func TestNotificationServiceFanOut(t *testing.T) {
	var mu sync.Mutex
	var inserted []models.Notification
	repo := &fakeNotificationRepository{
		CreateFunc: func(ctx context.Context, n *models.Notification) error {
			mu.Lock()
			defer mu.Unlock()
			inserted = append(inserted, *n)
			return nil
		},
	}
	hub := &fakeBroadcaster{}
	svc := NewNotificationService(repo, hub, slog.Default())

	template := models.Notification{
		Type:  models.NotificationTeamUpdate,
		Title: "Team update",
		Body:  "membership changed",
	}
	svc.FanOut(context.Background(), []int{3, 1, 2}, template, "team_1")

	if len(inserted) != 3 {
		t.Fatalf("inserted %d notifications, want 3", len(inserted))
	}
	got := make([]int, 0, len(inserted))
	for _, n := range inserted {
		got = append(got, n.UserID)
		if n.Type != models.NotificationTeamUpdate {
			t.Errorf("notification type = %s, want team_update", n.Type)
		}
		if until := time.Until(n.ExpiresAt); until < models.NotificationTTL-time.Minute || until > models.NotificationTTL {
			t.Errorf("expires_at %v is not ~%v out", n.ExpiresAt, models.NotificationTTL)
		}
	}
	sort.Ints(got)
	if got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("recipients = %v, want [1 2 3]", got)
	}

	if len(hub.rooms) != 1 || hub.rooms[0] != "team_1" {
		t.Errorf("broadcast rooms = %v, want [team_1]", hub.rooms)
	}
}

func TestNotificationServiceFanOutToleratesFailures(t *testing.T) {
	var mu sync.Mutex
	var succeeded []int
	repo := &fakeNotificationRepository{
		CreateFunc: func(ctx context.Context, n *models.Notification) error {
			if n.UserID == 2 {
				return errors.New("insert failed")
			}
			mu.Lock()
			defer mu.Unlock()
			succeeded = append(succeeded, n.UserID)
			return nil
		},
	}
	svc := NewNotificationService(repo, &fakeBroadcaster{}, slog.Default())

	// Must not panic or surface the failed insert.
	svc.FanOut(context.Background(), []int{1, 2, 3}, models.Notification{
		Type: models.NotificationProjectUpdate,
	}, "")

	sort.Ints(succeeded)
	if len(succeeded) != 2 || succeeded[0] != 1 || succeeded[1] != 3 {
		t.Errorf("successful recipients = %v, want [1 3]", succeeded)
	}
}

func TestNotificationServiceFanOutSkipsBroadcastWithoutRoom(t *testing.T) {
	hub := &fakeBroadcaster{}
	svc := NewNotificationService(&fakeNotificationRepository{}, hub, slog.Default())

	svc.FanOut(context.Background(), []int{1}, models.Notification{Type: models.NotificationTeamInvite}, "")

	if len(hub.rooms) != 0 {
		t.Errorf("broadcast rooms = %v, want none", hub.rooms)
	}
}

func TestNotificationServiceCleanupExpired(t *testing.T) {
	called := false
	repo := &fakeNotificationRepository{
		DeleteExpiredFunc: func(ctx context.Context) (int64, error) {
			called = true
			return 4, nil
		},
	}
	svc := NewNotificationService(repo, &fakeBroadcaster{}, slog.Default())

	if err := svc.CleanupExpired(context.Background()); err != nil {
		t.Fatalf("CleanupExpired returned error: %v", err)
	}
	if !called {
		t.Error("DeleteExpired was not called")
	}
}
