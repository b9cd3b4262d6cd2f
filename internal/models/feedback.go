package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Feedback struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	SubmissionID string    `gorm:"type:varchar(36);not null;index" json:"submission_id"`
	UserID       string    `gorm:"type:varchar(36);not null" json:"user_id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	IsEdited     bool      `gorm:"not null;default:false" json:"is_edited"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Submission Submission `gorm:"foreignKey:SubmissionID" json:"-"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
