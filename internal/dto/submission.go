package dto

import (
	"time"

	"github.com/yukikurage/group-study-api/internal/models"
)

// SubmissionDTO represents a submission with its upvotes split by kind
type SubmissionDTO struct {
	ID                string    `json:"id"`
	TaskID            string    `json:"task_id"`
	UserID            string    `json:"user_id"`
	Document          string    `json:"document"`
	SubmittedAt       time.Time `json:"submitted_at"`
	UserUpvotes       []string  `json:"user_upvotes"`
	ExpertUpvotes     []string  `json:"expert_upvotes"`
	UserUpvoteCount   int       `json:"user_upvote_count"`
	ExpertUpvoteCount int       `json:"expert_upvote_count"`
}

// FeedbackDTO represents feedback on a submission
type FeedbackDTO struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	IsEdited     bool      `json:"is_edited"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ToSubmissionDTO(submission models.Submission) SubmissionDTO {
	users, experts := submission.VotersByKind()

	return SubmissionDTO{
		ID:                submission.ID,
		TaskID:            submission.TaskID,
		UserID:            submission.UserID,
		Document:          submission.Document,
		SubmittedAt:       submission.SubmittedAt,
		UserUpvotes:       users,
		ExpertUpvotes:     experts,
		UserUpvoteCount:   len(users),
		ExpertUpvoteCount: len(experts),
	}
}

func ToSubmissionDTOs(submissions []models.Submission) []SubmissionDTO {
	out := make([]SubmissionDTO, len(submissions))
	for i, s := range submissions {
		out[i] = ToSubmissionDTO(s)
	}
	return out
}

func ToFeedbackDTO(feedback models.Feedback) FeedbackDTO {
	return FeedbackDTO{
		ID:           feedback.ID,
		SubmissionID: feedback.SubmissionID,
		UserID:       feedback.UserID,
		Content:      feedback.Content,
		IsEdited:     feedback.IsEdited,
		CreatedAt:    feedback.CreatedAt,
		UpdatedAt:    feedback.UpdatedAt,
	}
}

func ToFeedbackDTOs(feedback []models.Feedback) []FeedbackDTO {
	out := make([]FeedbackDTO, len(feedback))
	for i, f := range feedback {
		out[i] = ToFeedbackDTO(f)
	}
	return out
}
