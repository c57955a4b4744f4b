package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hackfest-dev/hackfest-server/models"
	"github.com/hackfest-dev/hackfest-server/repositories"
	"github.com/hackfest-dev/hackfest-server/storage"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID int, currentUserID int, input UpdateProfileInput) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, currentUserID int, contentType string, file io.Reader) (*models.User, error)
	Deactivate(ctx context.Context, userID int, currentUser *models.User) error
}

type UpdateProfileInput struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Bio       *string  `json:"bio"`
	Skills    []string `json:"skills"`
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	user.PasswordHash = ""
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	filter.OnlyActive = true
	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
		s.populateAvatarURL(&users[i])
	}
	return users, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, currentUserID int, input UpdateProfileInput) (*models.User, error) {
	if userID != currentUserID {
		return nil, ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.Skills != nil {
		user.Skills = input.Skills
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	user.PasswordHash = ""
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, currentUserID int, contentType string, file io.Reader) (*models.User, error) {
	if userID != currentUserID {
		return nil, ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	key := fmt.Sprintf("avatars/user_%d_%d", userID, time.Now().Unix())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for user %d: %w", userID, err)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &result.Key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to persist avatar key for user %d: %w", userID, err)
	}

	// Best effort: a dangling old object is not worth failing the request.
	if oldKey != nil {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			slog.Warn("failed to delete replaced avatar", "user_id", userID, "key", *oldKey, "error", err)
		}
	}

	user.PasswordHash = ""
	s.populateAvatarURL(user)
	return user, nil
}

// Deactivate soft-deletes an account: the email is renamed to free the
// address for re-registration and the active flag is cleared. Rows are
// never hard-deleted.
func (s *userService) Deactivate(ctx context.Context, userID int, currentUser *models.User) error {
	if currentUser.ID != userID && currentUser.Role != models.RoleAdmin {
		return ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	user.Email = fmt.Sprintf("deleted_%d_%s", time.Now().Unix(), user.Email)
	user.IsActive = false

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to deactivate user %d: %w", userID, err)
	}
	return nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if user.AvatarKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &url
	}
}
