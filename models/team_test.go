package models

import "testing"

func member(userID int, status InvitationStatus, leader bool) TeamMember {
	return TeamMember{TeamID: 1, UserID: userID, Status: status, IsLeader: leader}
}

func TestTeamRecomputeDerived(t *testing.T) {
	tests := []struct {
		name         string
		maxMembers   int
		members      []TeamMember
		wantSlots    int
		wantLooking  bool
		wantAccepted int
	}{
		{
			name:         "leader only",
			maxMembers:   4,
			members:      []TeamMember{member(1, InvitationAccepted, true)},
			wantSlots:    3,
			wantLooking:  true,
			wantAccepted: 1,
		},
		{
			name:       "pending invites do not take slots",
			maxMembers: 3,
			members: []TeamMember{
				member(1, InvitationAccepted, true),
				member(2, InvitationPending, false),
				member(3, InvitationRejected, false),
			},
			wantSlots:    2,
			wantLooking:  true,
			wantAccepted: 1,
		},
		{
			name:       "full team stops looking",
			maxMembers: 2,
			members: []TeamMember{
				member(1, InvitationAccepted, true),
				member(2, InvitationAccepted, false),
			},
			wantSlots:    0,
			wantLooking:  false,
			wantAccepted: 2,
		},
		{
			name:       "over capacity clamps to zero",
			maxMembers: 1,
			members: []TeamMember{
				member(1, InvitationAccepted, true),
				member(2, InvitationAccepted, false),
			},
			wantSlots:    0,
			wantLooking:  false,
			wantAccepted: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			team := &Team{ID: 1, MaxMembers: tc.maxMembers, Members: tc.members}
			team.RecomputeDerived()
			if team.AvailableSlots != tc.wantSlots {
				t.Errorf("AvailableSlots = %d, want %d", team.AvailableSlots, tc.wantSlots)
			}
			if team.IsLookingForMembers != tc.wantLooking {
				t.Errorf("IsLookingForMembers = %v, want %v", team.IsLookingForMembers, tc.wantLooking)
			}
			if got := team.AcceptedCount(); got != tc.wantAccepted {
				t.Errorf("AcceptedCount = %d, want %d", got, tc.wantAccepted)
			}
		})
	}
}

func TestTeamAcceptedLeaderCount(t *testing.T) {
	team := &Team{Members: []TeamMember{
		member(1, InvitationAccepted, true),
		member(2, InvitationAccepted, false),
		member(3, InvitationPending, true), // invited as leader, not yet accepted
	}}
	if got := team.AcceptedLeaderCount(); got != 1 {
		t.Errorf("AcceptedLeaderCount = %d, want 1", got)
	}
}

func TestTeamMemberByUserID(t *testing.T) {
	team := &Team{Members: []TeamMember{member(1, InvitationAccepted, true), member(2, InvitationPending, false)}}
	if m := team.MemberByUserID(2); m == nil || m.Status != InvitationPending {
		t.Errorf("MemberByUserID(2) = %+v", m)
	}
	if m := team.MemberByUserID(9); m != nil {
		t.Errorf("MemberByUserID(9) = %+v, want nil", m)
	}
}
