package models

// Dashboard aggregates the caller's activity across the platform.
type Dashboard struct {
	HackathonCount      int            `json:"hackathon_count"`
	TeamCount           int            `json:"team_count"`
	ProjectCount        int            `json:"project_count"`
	PendingInviteCount  int            `json:"pending_invite_count"`
	UnreadNotifications int            `json:"unread_notifications"`
	RecentNotifications []Notification `json:"recent_notifications"`
	Projects            []Project      `json:"projects,omitempty"`
}
