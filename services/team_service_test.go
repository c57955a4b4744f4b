package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/hackfest-dev/hackfest-server/models"
)

func newTestTeamService(teamRepo *fakeTeamRepository, userRepo *fakeUserRepository, mailer *fakeMailer) TeamService {
	notifications := NewNotificationService(&fakeNotificationRepository{}, &fakeBroadcaster{}, slog.Default())
	return NewTeamService(teamRepo, userRepo, notifications, mailer, slog.Default())
}

// teamFixture builds a team with an accepted leader (user 1) and the given
// extra members, backed by a repo that serves it consistently.
func teamFixture(maxMembers int, extra ...models.TeamMember) (*fakeTeamRepository, *models.Team) {
	now := time.Now()
	members := []models.TeamMember{
		{ID: 1, TeamID: 1, UserID: 1, Status: models.InvitationAccepted, IsLeader: true, JoinedAt: &now},
	}
	members = append(members, extra...)

	team := &models.Team{
		ID:          1,
		HackathonID: 1,
		Name:        "builders",
		MaxMembers:  maxMembers,
		Members:     members,
	}
	team.RecomputeDerived()

	repo := &fakeTeamRepository{
		GetByIDFunc: func(ctx context.Context, id int) (*models.Team, error) {
			clone := *team
			clone.Members = append([]models.TeamMember(nil), team.Members...)
			return &clone, nil
		},
		ListMembersFunc: func(ctx context.Context, teamID int) ([]models.TeamMember, error) {
			return append([]models.TeamMember(nil), team.Members...), nil
		},
	}
	return repo, team
}

func TestTeamServiceCreateAddsLeader(t *testing.T) {
	var added *models.TeamMember
	repo := &fakeTeamRepository{
		AddMemberFunc: func(ctx context.Context, member *models.TeamMember) error {
			added = member
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id int) (*models.Team, error) {
			return &models.Team{ID: id, Name: "builders", MaxMembers: 4}, nil
		},
	}
	svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

	_, err := svc.Create(context.Background(), 7, TeamInput{HackathonID: 1, Name: "builders", MaxMembers: 4})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if added == nil {
		t.Fatal("creator slot was not added")
	}
	if added.UserID != 7 || !added.IsLeader || added.Status != models.InvitationAccepted {
		t.Errorf("creator slot = %+v, want accepted leader for user 7", added)
	}
	if added.JoinedAt == nil {
		t.Error("creator slot has no join timestamp")
	}
}

func TestTeamServiceCreateValidation(t *testing.T) {
	svc := newTestTeamService(&fakeTeamRepository{}, &fakeUserRepository{}, &fakeMailer{})

	if _, err := svc.Create(context.Background(), 1, TeamInput{MaxMembers: 4}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("empty name: got %v, want ErrValidationFailed", err)
	}
	if _, err := svc.Create(context.Background(), 1, TeamInput{Name: "x", MaxMembers: 0}); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("zero capacity: got %v, want ErrInvalidCapacity", err)
	}
}

func TestTeamServiceDelete(t *testing.T) {
	t.Run("leader deletes the team", func(t *testing.T) {
		repo, _ := teamFixture(3)
		var deletedID int
		repo.DeleteFunc = func(ctx context.Context, id int) error {
			deletedID = id
			return nil
		}
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if err := svc.Delete(context.Background(), 1, 1); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if deletedID != 1 {
			t.Errorf("deleted team = %d, want 1", deletedID)
		}
	})

	t.Run("accepted member cannot delete", func(t *testing.T) {
		now := time.Now()
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted, JoinedAt: &now,
		})
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if err := svc.Delete(context.Background(), 1, 2); !errors.Is(err, ErrNotTeamLeader) {
			t.Errorf("Delete error = %v, want ErrNotTeamLeader", err)
		}
	})

	t.Run("pending invitee cannot delete", func(t *testing.T) {
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationPending,
		})
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if err := svc.Delete(context.Background(), 1, 2); !errors.Is(err, ErrNotTeamLeader) {
			t.Errorf("Delete error = %v, want ErrNotTeamLeader", err)
		}
	})

	t.Run("unknown team", func(t *testing.T) {
		svc := newTestTeamService(&fakeTeamRepository{}, &fakeUserRepository{}, &fakeMailer{})
		if err := svc.Delete(context.Background(), 404, 1); !errors.Is(err, ErrTeamNotFound) {
			t.Errorf("Delete error = %v, want ErrTeamNotFound", err)
		}
	})
}

func TestTeamServiceInvite(t *testing.T) {
	tests := []struct {
		name        string
		maxMembers  int
		extra       []models.TeamMember
		callerID    int
		targetID    int
		wantErr     error
		wantPending bool
	}{
		{
			name:        "leader invites a new user",
			maxMembers:  3,
			callerID:    1,
			targetID:    5,
			wantPending: true,
		},
		{
			name:       "non-member cannot invite",
			maxMembers: 3,
			callerID:   9,
			targetID:   5,
			wantErr:    ErrNotTeamMember,
		},
		{
			name:       "pending invitee cannot invite",
			maxMembers: 3,
			extra: []models.TeamMember{
				{ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationPending},
			},
			callerID: 2,
			targetID: 5,
			wantErr:  ErrNotTeamMember,
		},
		{
			name:       "full team rejects invites",
			maxMembers: 2,
			extra: []models.TeamMember{
				{ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted},
			},
			callerID: 1,
			targetID: 5,
			wantErr:  ErrTeamFull,
		},
		{
			name:       "pending slot is not duplicated",
			maxMembers: 3,
			extra: []models.TeamMember{
				{ID: 2, TeamID: 1, UserID: 5, Status: models.InvitationPending},
			},
			callerID: 1,
			targetID: 5,
			wantErr:  ErrAlreadyInvited,
		},
		{
			name:       "accepted member cannot be re-invited",
			maxMembers: 3,
			extra: []models.TeamMember{
				{ID: 2, TeamID: 1, UserID: 5, Status: models.InvitationAccepted},
			},
			callerID: 1,
			targetID: 5,
			wantErr:  ErrAlreadyMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := teamFixture(tt.maxMembers, tt.extra...)
			var added *models.TeamMember
			repo.AddMemberFunc = func(ctx context.Context, member *models.TeamMember) error {
				added = member
				return nil
			}
			svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

			_, err := svc.Invite(context.Background(), 1, tt.callerID, tt.targetID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Invite error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Invite returned error: %v", err)
			}
			if tt.wantPending {
				if added == nil {
					t.Fatal("no member slot was added")
				}
				if added.UserID != tt.targetID || added.Status != models.InvitationPending {
					t.Errorf("added slot = %+v, want pending for user %d", added, tt.targetID)
				}
			}
		})
	}
}

func TestTeamServiceInviteResetsRejectedSlot(t *testing.T) {
	repo, _ := teamFixture(3, models.TeamMember{
		ID: 2, TeamID: 1, UserID: 5, Status: models.InvitationRejected,
	})
	var updated *models.TeamMember
	repo.UpdateMemberFunc = func(ctx context.Context, member *models.TeamMember) error {
		updated = member
		return nil
	}
	mailer := &fakeMailer{}
	svc := newTestTeamService(repo, &fakeUserRepository{
		GetByIDFunc: func(ctx context.Context, id int) (*models.User, error) {
			return &models.User{ID: id, Email: "target@example.com", IsActive: true}, nil
		},
	}, mailer)

	if _, err := svc.Invite(context.Background(), 1, 1, 5); err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}
	if updated == nil {
		t.Fatal("rejected slot was not updated")
	}
	if updated.Status != models.InvitationPending {
		t.Errorf("slot status = %s, want pending", updated.Status)
	}
	if updated.JoinedAt != nil {
		t.Error("re-invited slot kept a join timestamp")
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "target@example.com" {
		t.Errorf("invite mail sent to %v, want [target@example.com]", mailer.sent)
	}
}

func TestTeamServiceRespond(t *testing.T) {
	t.Run("accept stamps joined_at", func(t *testing.T) {
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 5, Status: models.InvitationPending,
		})
		var updated *models.TeamMember
		repo.UpdateMemberFunc = func(ctx context.Context, member *models.TeamMember) error {
			updated = member
			return nil
		}
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.Respond(context.Background(), 1, 5, true); err != nil {
			t.Fatalf("Respond returned error: %v", err)
		}
		if updated == nil || updated.Status != models.InvitationAccepted {
			t.Fatalf("slot = %+v, want accepted", updated)
		}
		if updated.JoinedAt == nil {
			t.Error("accepted slot has no join timestamp")
		}
	})

	t.Run("reject keeps the slot without joined_at", func(t *testing.T) {
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 5, Status: models.InvitationPending,
		})
		var updated *models.TeamMember
		repo.UpdateMemberFunc = func(ctx context.Context, member *models.TeamMember) error {
			updated = member
			return nil
		}
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.Respond(context.Background(), 1, 5, false); err != nil {
			t.Fatalf("Respond returned error: %v", err)
		}
		if updated == nil || updated.Status != models.InvitationRejected {
			t.Fatalf("slot = %+v, want rejected", updated)
		}
		if updated.JoinedAt != nil {
			t.Error("rejected slot has a join timestamp")
		}
	})

	t.Run("accept into a team that filled up fails", func(t *testing.T) {
		repo, _ := teamFixture(2,
			models.TeamMember{ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted},
			models.TeamMember{ID: 3, TeamID: 1, UserID: 5, Status: models.InvitationPending},
		)
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.Respond(context.Background(), 1, 5, true); !errors.Is(err, ErrTeamFull) {
			t.Errorf("Respond error = %v, want ErrTeamFull", err)
		}
	})

	t.Run("responding without a pending slot fails", func(t *testing.T) {
		repo, _ := teamFixture(3)
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.Respond(context.Background(), 1, 9, true); !errors.Is(err, ErrNotInvited) {
			t.Errorf("Respond error = %v, want ErrNotInvited", err)
		}
		// An already accepted member cannot respond again.
		if _, err := svc.Respond(context.Background(), 1, 1, true); !errors.Is(err, ErrNotInvited) {
			t.Errorf("Respond error = %v, want ErrNotInvited", err)
		}
	})
}

func TestTeamServiceRemoveMember(t *testing.T) {
	t.Run("removing the only leader is rejected", func(t *testing.T) {
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted,
		})
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.RemoveMember(context.Background(), 1, 1, 1); !errors.Is(err, ErrLastLeader) {
			t.Errorf("RemoveMember error = %v, want ErrLastLeader", err)
		}
	})

	t.Run("leader can leave once another leader exists", func(t *testing.T) {
		now := time.Now()
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted, IsLeader: true, JoinedAt: &now,
		})
		removed := 0
		repo.RemoveMemberFunc = func(ctx context.Context, memberID int) error {
			removed = memberID
			return nil
		}
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.RemoveMember(context.Background(), 1, 1, 1); err != nil {
			t.Fatalf("RemoveMember returned error: %v", err)
		}
		if removed != 1 {
			t.Errorf("removed member id = %d, want 1", removed)
		}
	})

	t.Run("non-leader cannot remove others", func(t *testing.T) {
		now := time.Now()
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted, JoinedAt: &now,
		})
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.RemoveMember(context.Background(), 1, 2, 1); !errors.Is(err, ErrNotTeamLeader) {
			t.Errorf("RemoveMember error = %v, want ErrNotTeamLeader", err)
		}
	})

	t.Run("member can remove themselves", func(t *testing.T) {
		now := time.Now()
		repo, _ := teamFixture(3, models.TeamMember{
			ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted, JoinedAt: &now,
		})
		removed := 0
		repo.RemoveMemberFunc = func(ctx context.Context, memberID int) error {
			removed = memberID
			return nil
		}
		svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

		if _, err := svc.RemoveMember(context.Background(), 1, 2, 2); err != nil {
			t.Fatalf("RemoveMember returned error: %v", err)
		}
		if removed != 2 {
			t.Errorf("removed member id = %d, want 2", removed)
		}
	})
}

func TestTeamServicePromoteLeader(t *testing.T) {
	now := time.Now()
	repo, _ := teamFixture(3, models.TeamMember{
		ID: 2, TeamID: 1, UserID: 2, Status: models.InvitationAccepted, JoinedAt: &now,
	})
	var updated *models.TeamMember
	repo.UpdateMemberFunc = func(ctx context.Context, member *models.TeamMember) error {
		updated = member
		return nil
	}
	svc := newTestTeamService(repo, &fakeUserRepository{}, &fakeMailer{})

	if _, err := svc.PromoteLeader(context.Background(), 1, 1, 2); err != nil {
		t.Fatalf("PromoteLeader returned error: %v", err)
	}
	if updated == nil || !updated.IsLeader {
		t.Fatalf("slot = %+v, want leader flag set", updated)
	}

	if _, err := svc.PromoteLeader(context.Background(), 1, 2, 1); !errors.Is(err, ErrNotTeamLeader) {
		t.Errorf("PromoteLeader by non-leader: got %v, want ErrNotTeamLeader", err)
	}
}
