package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

type Invitation struct {
	ID            string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClassID       string           `gorm:"type:varchar(36);not null;index" json:"class_id"`
	InvitedByID   string           `gorm:"type:varchar(36);not null" json:"invited_by"`
	InvitedUserID *string          `gorm:"type:varchar(36)" json:"invited_user"`
	Email         string           `gorm:"type:varchar(255);not null;index" json:"email"`
	Role          Role             `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Status        InvitationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Token         string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt     time.Time        `gorm:"not null" json:"expires_at"`
	CreatedAt     time.Time        `json:"created_at"`

	// Relations
	Class Class `gorm:"foreignKey:ClassID" json:"-"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = InvitationPending
	}
	if i.Role == RoleNone {
		i.Role = RoleMember
	}
	return nil
}

// Expired reports whether the invitation can no longer be accepted at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
