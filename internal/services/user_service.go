package services

import (
	"context"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/utils"
)

// UserService provides business logic for user profiles.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user")
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, lookupError(err, "user")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error) {
	users, total, err := s.users.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUserInput holds the editable profile fields. Nil fields are left unchanged.
type UpdateUserInput struct {
	Username       *string
	ProfilePicture *string
}

// Update changes the actor's own profile.
func (s *UserService) Update(ctx context.Context, actorID string, target *models.User, input UpdateUserInput) (*models.User, error) {
	if target.ID != actorID {
		return nil, apierrors.Denied("You can only edit your own profile")
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apierrors.InvalidField("username", "Username cannot be empty")
		}
		target.Username = username
	}
	if input.ProfilePicture != nil {
		if *input.ProfilePicture == "" {
			target.ProfilePicture = nil
		} else {
			if err := validateDocument("profile_picture", *input.ProfilePicture, true); err != nil {
				return nil, err
			}
			picture := *input.ProfilePicture
			target.ProfilePicture = &picture
		}
	}

	if err := s.users.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return target, nil
}

// Deactivate disables the actor's own account. A deactivated account cannot log in
// or refresh; everything it created stays in place.
func (s *UserService) Deactivate(ctx context.Context, actorID string, target *models.User) error {
	if target.ID != actorID {
		return apierrors.Denied("You can only delete your own account")
	}
	return s.SetActive(ctx, target, false)
}

// SetActive changes whether the account may sign in.
func (s *UserService) SetActive(ctx context.Context, user *models.User, active bool) error {
	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Purge permanently deletes a user with everything they created or submitted.
func (s *UserService) Purge(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return lookupError(err, "user")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
