package models

import "time"

// UserRole mirrors the user_role ENUM in the database.
type UserRole string

const (
	RoleParticipant UserRole = "participant"
	RoleJudge       UserRole = "judge"
	RoleAdmin       UserRole = "admin"
	RoleMentor      UserRole = "mentor"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleParticipant, RoleJudge, RoleAdmin, RoleMentor:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	Skills       []string  `json:"skills" db:"skills"`
	Bio          *string   `json:"bio,omitempty" db:"bio"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}
