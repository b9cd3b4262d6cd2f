package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"type:varchar(7);uniqueIndex;not null" json:"code"`
	CreatedByID string    `gorm:"type:varchar(36);not null;index" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	CreatedBy   User              `gorm:"foreignKey:CreatedByID" json:"-"`
	Memberships []ClassMembership `gorm:"foreignKey:ClassID" json:"-"`
	Tasks       []Task            `gorm:"foreignKey:ClassID" json:"-"`
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
