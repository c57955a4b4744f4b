package models

import "time"

// ProjectStatus mirrors the project_status ENUM in the database.
type ProjectStatus string

const (
	ProjectDraft       ProjectStatus = "draft"
	ProjectInProgress  ProjectStatus = "in_progress"
	ProjectSubmitted   ProjectStatus = "submitted"
	ProjectUnderReview ProjectStatus = "under_review"
	ProjectSelected    ProjectStatus = "selected"
	ProjectWinner      ProjectStatus = "winner"
	ProjectCompleted   ProjectStatus = "completed"
	ProjectRejected    ProjectStatus = "rejected"
)

// projectTransitions lists the legal forward moves of the status tag.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectDraft:       {ProjectInProgress, ProjectSubmitted},
	ProjectInProgress:  {ProjectSubmitted},
	ProjectSubmitted:   {ProjectUnderReview},
	ProjectUnderReview: {ProjectSelected, ProjectWinner, ProjectCompleted, ProjectRejected},
	ProjectSelected:    {ProjectWinner, ProjectCompleted},
}

// CanTransition reports whether moving from one status to another is legal.
func (s ProjectStatus) CanTransition(to ProjectStatus) bool {
	for _, next := range projectTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Project team roles. Distinct from the pre-formation Team entity: each
// project embeds its own (user, role) member list.
const (
	ProjectRoleOwner  = "owner"
	ProjectRoleMember = "member"
)

type ProjectMember struct {
	ProjectID int       `json:"project_id" db:"project_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`

	User *User `json:"user,omitempty" db:"-"`
}

type Project struct {
	ID          int           `json:"id" db:"id"`
	HackathonID int           `json:"hackathon_id" db:"hackathon_id"`
	Name        string        `json:"name" db:"name"`
	Description *string       `json:"description,omitempty" db:"description"`
	RepoURL     *string       `json:"repo_url,omitempty" db:"repo_url"`
	DemoURL     *string       `json:"demo_url,omitempty" db:"demo_url"`
	Status      ProjectStatus `json:"status" db:"status"`
	// Set exactly once, on the first transition into submitted.
	SubmittedAt *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	MediaKey *string `json:"-" db:"media_key"`
	MediaURL *string `json:"media_url,omitempty" db:"-"`

	Members []ProjectMember `json:"members,omitempty" db:"-"`
}

// HasMember reports whether the given user appears in the member list.
func (p *Project) HasMember(userID int) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsOwner reports whether the given user carries the owner role.
func (p *Project) IsOwner(userID int) bool {
	for _, m := range p.Members {
		if m.UserID == userID && m.Role == ProjectRoleOwner {
			return true
		}
	}
	return false
}
