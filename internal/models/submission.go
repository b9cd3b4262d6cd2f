package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Submission struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TaskID      string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	UserID      string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Document    string    `gorm:"type:varchar(1024);not null" json:"document"`
	SubmittedAt time.Time `gorm:"autoCreateTime" json:"submitted_at"`

	// Relations
	Task    Task               `gorm:"foreignKey:TaskID" json:"-"`
	User    User               `gorm:"foreignKey:UserID" json:"-"`
	Upvotes []SubmissionUpvote `gorm:"foreignKey:SubmissionID" json:"-"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type UpvoteKind string

const (
	UpvoteKindUser   UpvoteKind = "user"
	UpvoteKindExpert UpvoteKind = "expert"
)

// SubmissionUpvote records one voter's upvote. A voter counts at most once per submission.
type SubmissionUpvote struct {
	SubmissionID string     `gorm:"type:varchar(36);primaryKey" json:"submission_id"`
	VoterID      string     `gorm:"type:varchar(36);primaryKey;index" json:"voter_id"`
	Kind         UpvoteKind `gorm:"type:varchar(10);not null" json:"kind"`
	CreatedAt    time.Time  `json:"created_at"`
}

// VotersByKind splits a submission's upvotes into user and expert voter ids.
func (s *Submission) VotersByKind() (users, experts []string) {
	users, experts = []string{}, []string{}
	for _, u := range s.Upvotes {
		if u.Kind == UpvoteKindExpert {
			experts = append(experts, u.VoterID)
		} else {
			users = append(users, u.VoterID)
		}
	}
	return users, experts
}
