package models

import "time"

// HackathonStatus mirrors the hackathon_status ENUM in the database.
// The stored value is a cache: the authoritative status is always
// derived from the stored time boundaries via CurrentStatus.
type HackathonStatus string

const (
	HackathonUpcoming     HackathonStatus = "upcoming"
	HackathonRegistration HackathonStatus = "registration"
	HackathonOngoing      HackathonStatus = "ongoing"
	HackathonJudging      HackathonStatus = "judging"
	HackathonCompleted    HackathonStatus = "completed"
)

type Hackathon struct {
	ID                int             `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Description       *string         `json:"description,omitempty" db:"description"`
	OrganizerID       int             `json:"organizer_id" db:"organizer_id"`
	RegistrationStart time.Time       `json:"registration_start" db:"registration_start"`
	RegistrationEnd   time.Time       `json:"registration_end" db:"registration_end"`
	StartDate         time.Time       `json:"start_date" db:"start_date"`
	EndDate           time.Time       `json:"end_date" db:"end_date"`
	JudgingEnd        time.Time       `json:"judging_end" db:"judging_end"`
	Public            bool            `json:"public" db:"public"`
	MaxParticipants   int             `json:"max_participants" db:"max_participants"`
	Status            HackathonStatus `json:"status" db:"status"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`

	BannerKey *string `json:"-" db:"banner_key"`
	BannerURL *string `json:"banner_url,omitempty" db:"-"`

	Organizer        *User `json:"organizer,omitempty" db:"-"`
	ParticipantCount int   `json:"participant_count" db:"-"`
}

// CurrentStatus derives the status from wall-clock time against the
// stored boundaries. The gap between registration close and the start
// date reports upcoming.
func (h *Hackathon) CurrentStatus(now time.Time) HackathonStatus {
	switch {
	case now.Before(h.RegistrationStart):
		return HackathonUpcoming
	case now.Before(h.RegistrationEnd):
		return HackathonRegistration
	case now.Before(h.StartDate):
		return HackathonUpcoming
	case now.Before(h.EndDate):
		return HackathonOngoing
	case now.Before(h.JudgingEnd):
		return HackathonJudging
	default:
		return HackathonCompleted
	}
}

// RegistrationOpen reports whether a participant may register right now.
func (h *Hackathon) RegistrationOpen(now time.Time) bool {
	return h.CurrentStatus(now) == HackathonRegistration
}
