package services

import "errors"

// Shared errors mapped to HTTP statuses in the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTeamFull             = errors.New("team is full")
	ErrAlreadyInvited       = errors.New("user already invited to this team")
	ErrAlreadyMember        = errors.New("user is already a member of this team")
	ErrLastLeader           = errors.New("cannot remove the only team leader")
	ErrNotInvited           = errors.New("no pending invitation for this user")
	ErrInvalidScore         = errors.New("scores must be integers between 0 and 10")
	ErrInvalidStatusChange  = errors.New("invalid project status transition")
	ErrRegistrationClosed   = errors.New("hackathon registration is not open")
	ErrHackathonFull        = errors.New("hackathon registration is full")
	ErrInvalidDateRange     = errors.New("hackathon dates must be in chronological order")
	ErrInvalidCapacity      = errors.New("capacity must be positive")
	ErrMessageEmpty         = errors.New("message content must not be empty")

	// Conflicts
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrAlreadyRegistered     = errors.New("already registered for this hackathon")
	ErrSubmissionExists      = errors.New("project already has a submission")
	ErrTeamNameConflict      = errors.New("team name is already in use")
	ErrHackathonNameConflict = errors.New("hackathon name already exists")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountInactive      = errors.New("account is deactivated")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrNotTeamMember        = errors.New("only an accepted team member can perform this action")
	ErrNotTeamLeader        = errors.New("only a team leader can perform this action")
	ErrNotProjectMember     = errors.New("only a project member can perform this action")
	ErrNotProjectOwner      = errors.New("only the project owner can perform this action")
	ErrNotJudge             = errors.New("only a judge can perform this action")
	ErrNotAdmin             = errors.New("admin access required")
	ErrNotRoomMember        = errors.New("caller is not a member of this room")

	// Entity-specific not-found (more context than ErrNotFound)
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrHackathonNotFound    = errors.New("hackathon not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrMemberNotFound       = errors.New("team member not found")
)
