package models

import "time"

// NotificationType is the closed set of notification kinds.
type NotificationType string

const (
	NotificationTeamInvite       NotificationType = "team_invite"
	NotificationHackathonUpdate  NotificationType = "hackathon_update"
	NotificationInviteResponse   NotificationType = "invite_response"
	NotificationTeamUpdate       NotificationType = "team_update"
	NotificationProjectUpdate    NotificationType = "project_update"
	NotificationSubmissionStatus NotificationType = "submission_status"
	NotificationEvaluation       NotificationType = "evaluation"
)

// NotificationTTL is how long a notification stays visible before the
// cleanup pass removes it.
const NotificationTTL = 30 * 24 * time.Hour

type Notification struct {
	ID     int              `json:"id" db:"id"`
	UserID int              `json:"user_id" db:"user_id"`
	Type   NotificationType `json:"type" db:"type"`
	Title  string           `json:"title" db:"title"`
	Body   string           `json:"body" db:"body"`
	// Denormalized per-kind payload, stored as JSONB.
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	Read      bool                   `json:"read" db:"read"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	ExpiresAt time.Time              `json:"expires_at" db:"expires_at"`
}
