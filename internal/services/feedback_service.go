package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/group-study-api/internal/authz"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
)

// FeedbackService handles feedback left on submissions.
type FeedbackService struct {
	feedback    repository.FeedbackRepository
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	authz       *authz.Authorizer
}

func NewFeedbackService(
	feedback repository.FeedbackRepository,
	submissions repository.SubmissionRepository,
	tasks repository.TaskRepository,
	authorizer *authz.Authorizer,
) *FeedbackService {
	return &FeedbackService{
		feedback:    feedback,
		submissions: submissions,
		tasks:       tasks,
		authz:       authorizer,
	}
}

// Create adds feedback to a submission. The submitter and the class's reviewers may.
func (s *FeedbackService) Create(ctx context.Context, submissionID, actorID, content string) (*models.Feedback, error) {
	submission, err := s.authorizeReview(ctx, submissionID, actorID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierrors.InvalidField("content", "Feedback cannot be empty")
	}

	feedback := &models.Feedback{
		SubmissionID: submission.ID,
		UserID:       actorID,
		Content:      content,
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return feedback, nil
}

// List returns a submission's feedback, oldest first.
func (s *FeedbackService) List(ctx context.Context, submissionID, actorID string) ([]models.Feedback, error) {
	if _, err := s.authorizeReview(ctx, submissionID, actorID); err != nil {
		return nil, err
	}

	feedback, err := s.feedback.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, nil
}

// Update rewrites the actor's own feedback and marks it edited.
func (s *FeedbackService) Update(ctx context.Context, id, actorID, content string) (*models.Feedback, error) {
	feedback, err := s.authorizeChange(ctx, id, actorID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierrors.InvalidField("content", "Feedback cannot be empty")
	}

	feedback.Content = content
	feedback.IsEdited = true
	if err := s.feedback.Update(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to update feedback: %w", err)
	}
	return feedback, nil
}

// Delete removes the actor's own feedback.
func (s *FeedbackService) Delete(ctx context.Context, id, actorID string) error {
	if _, err := s.authorizeChange(ctx, id, actorID, authz.ActionDelete); err != nil {
		return err
	}
	if err := s.feedback.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

func (s *FeedbackService) authorizeReview(ctx context.Context, submissionID, actorID string) (*models.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, lookupError(err, "submission")
	}
	task, err := s.tasks.FindByID(ctx, submission.TaskID)
	if err != nil {
		return nil, lookupError(err, "task")
	}
	if _, err := s.authz.CanReview(ctx, actorID, submission, task.ClassID); err != nil {
		return nil, err
	}
	return submission, nil
}

// authorizeChange hides feedback from actors who cannot see the submission before
// checking authorship.
func (s *FeedbackService) authorizeChange(ctx context.Context, id, actorID string, action authz.Action) (*models.Feedback, error) {
	feedback, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "feedback")
	}
	if _, err := s.authorizeReview(ctx, feedback.SubmissionID, actorID); err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil, apierrors.Missing("feedback")
		}
		return nil, err
	}
	if err := s.authz.CanFeedback(actorID, feedback, action); err != nil {
		return nil, err
	}
	return feedback, nil
}
