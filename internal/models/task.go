package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusOngoing   TaskStatus = "ongoing"
	TaskStatusCompleted TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskStatusOngoing || s == TaskStatusCompleted
}

type Task struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	ClassID     string     `gorm:"type:varchar(36);not null;index" json:"class_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CreatedByID string     `gorm:"type:varchar(36);not null" json:"created_by"`
	DueDate     time.Time  `gorm:"not null" json:"due_date"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'ongoing'" json:"status"`
	Document    *string    `gorm:"type:varchar(1024)" json:"document"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Class     Class `gorm:"foreignKey:ClassID" json:"-"`
	CreatedBy User  `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TaskStatusOngoing
	}
	return nil
}
