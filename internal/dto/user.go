package dto

import (
	"time"

	"github.com/yukikurage/group-study-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Username       string     `json:"username"`
	ProfilePicture *string    `json:"profile_picture"`
	FirebaseUID    *string    `json:"firebase_uid"`
	IsActive       bool       `json:"is_active"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
}

// UserSummaryDTO is the part of a user shown next to things they made
type UserSummaryDTO struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
		FirebaseUID:    user.FirebaseUID,
		IsActive:       user.IsActive,
		LastLogin:      user.LastLogin,
		CreatedAt:      user.CreatedAt,
	}
}

func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:             user.ID,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
	}
}

// UserListResponse represents a paginated list of users
type UserListResponse struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalCount int64     `json:"total_count"`
}

// LoginResponse is returned by both login endpoints
type LoginResponse struct {
	AuthToken string  `json:"authToken"`
	User      UserDTO `json:"user"`
}

// RefreshResponse is returned by the refresh endpoint
type RefreshResponse struct {
	Access string `json:"access"`
	Detail string `json:"detail"`
}
