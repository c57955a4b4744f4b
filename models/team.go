package models

import "time"

// InvitationStatus tracks matchmaking consent per team member slot.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

type TeamMember struct {
	ID        int              `json:"id" db:"id"`
	TeamID    int              `json:"team_id" db:"team_id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Status    InvitationStatus `json:"status" db:"status"`
	IsLeader  bool             `json:"is_leader" db:"is_leader"`
	InvitedAt time.Time        `json:"invited_at" db:"invited_at"`
	JoinedAt  *time.Time       `json:"joined_at,omitempty" db:"joined_at"`

	User *User `json:"user,omitempty" db:"-"`
}

type Team struct {
	ID           int       `json:"id" db:"id"`
	HackathonID  int       `json:"hackathon_id" db:"hackathon_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	MaxMembers   int       `json:"max_members" db:"max_members"`
	SkillsWanted []string  `json:"skills_wanted" db:"skills_wanted"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Recomputed from the member list on every save and populated
	// again on read; the column is a cache, not a source of truth.
	IsLookingForMembers bool `json:"is_looking_for_members" db:"is_looking_for_members"`

	Members        []TeamMember `json:"members,omitempty" db:"-"`
	AvailableSlots int          `json:"available_slots" db:"-"`
}

// AcceptedCount returns the number of members who accepted their invite.
func (t *Team) AcceptedCount() int {
	n := 0
	for _, m := range t.Members {
		if m.Status == InvitationAccepted {
			n++
		}
	}
	return n
}

// AcceptedLeaderCount returns the number of accepted members carrying
// the leader flag.
func (t *Team) AcceptedLeaderCount() int {
	n := 0
	for _, m := range t.Members {
		if m.Status == InvitationAccepted && m.IsLeader {
			n++
		}
	}
	return n
}

// MemberByUserID returns the member slot for the given user, if any.
func (t *Team) MemberByUserID(userID int) *TeamMember {
	for i := range t.Members {
		if t.Members[i].UserID == userID {
			return &t.Members[i]
		}
	}
	return nil
}

// RecomputeDerived refreshes AvailableSlots and IsLookingForMembers
// from the current member list.
func (t *Team) RecomputeDerived() {
	accepted := t.AcceptedCount()
	t.AvailableSlots = t.MaxMembers - accepted
	if t.AvailableSlots < 0 {
		t.AvailableSlots = 0
	}
	t.IsLookingForMembers = accepted < t.MaxMembers
}
