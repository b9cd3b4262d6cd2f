package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirebaseUID    *string    `gorm:"type:varchar(128);uniqueIndex" json:"firebase_uid"`
	Username       string     `gorm:"type:varchar(150);not null" json:"username"`
	ProfilePicture *string    `gorm:"type:varchar(1024)" json:"profile_picture"`
	PasswordHash   string     `gorm:"type:varchar(255);not null;default:''" json:"-"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Memberships []ClassMembership `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HasPassword reports whether the account can sign in with a local password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
