package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/group-study-api/internal/authz"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
)

// SubmissionService handles submissions to tasks and their upvotes.
type SubmissionService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	authz       *authz.Authorizer
}

func NewSubmissionService(submissions repository.SubmissionRepository, tasks repository.TaskRepository, authorizer *authz.Authorizer) *SubmissionService {
	return &SubmissionService{
		submissions: submissions,
		tasks:       tasks,
		authz:       authorizer,
	}
}

// Submit records the actor's answer to an ongoing task of a class they belong to.
func (s *SubmissionService) Submit(ctx context.Context, task *models.Task, actorID, document string) (*models.Submission, error) {
	if _, err := s.authz.CanTask(ctx, actorID, task, authz.ActionRead); err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusOngoing {
		return nil, apierrors.Invalid("This task is completed and no longer accepts submissions")
	}

	document = strings.TrimSpace(document)
	if err := validateDocument("document", document, true); err != nil {
		return nil, err
	}

	submission := &models.Submission{
		TaskID:   task.ID,
		UserID:   actorID,
		Document: document,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return submission, nil
}

// ListForTask lists a task's submissions. Reviewers see all of them, members only their own.
func (s *SubmissionService) ListForTask(ctx context.Context, task *models.Task, actorID string) ([]models.Submission, error) {
	role, err := s.authz.CanTask(ctx, actorID, task, authz.ActionRead)
	if err != nil {
		return nil, err
	}

	var only *string
	if !authz.Reviewer(role) {
		only = &actorID
	}

	submissions, err := s.submissions.ListByTask(ctx, task.ID, only)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Get returns the actor's own submission.
func (s *SubmissionService) Get(ctx context.Context, id, actorID string) (*models.Submission, error) {
	submission, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanSubmission(actorID, submission, authz.ActionRead); err != nil {
		return nil, err
	}
	return submission, nil
}

// Update replaces the document of the actor's own submission.
func (s *SubmissionService) Update(ctx context.Context, id, actorID, document string) (*models.Submission, error) {
	submission, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.CanSubmission(actorID, submission, authz.ActionUpdate); err != nil {
		return nil, err
	}

	document = strings.TrimSpace(document)
	if err := validateDocument("document", document, true); err != nil {
		return nil, err
	}

	submission.Document = document
	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to update submission: %w", err)
	}
	return submission, nil
}

// Delete removes the actor's own submission with its upvotes and feedback.
func (s *SubmissionService) Delete(ctx context.Context, id, actorID string) error {
	submission, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.CanSubmission(actorID, submission, authz.ActionDelete); err != nil {
		return err
	}
	if err := s.submissions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	return nil
}

// Upvote adds the actor's vote, counted as an expert vote for experts and admins.
func (s *SubmissionService) Upvote(ctx context.Context, id, actorID string) (*models.Submission, error) {
	submission, role, err := s.authorizeVote(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.submissions.AddUpvote(ctx, &models.SubmissionUpvote{
		SubmissionID: submission.ID,
		VoterID:      actorID,
		Kind:         authz.UpvoteKind(role),
	}); err != nil {
		return nil, fmt.Errorf("failed to upvote submission: %w", err)
	}
	return s.find(ctx, id)
}

// RemoveUpvote withdraws the actor's vote if there is one.
func (s *SubmissionService) RemoveUpvote(ctx context.Context, id, actorID string) (*models.Submission, error) {
	submission, _, err := s.authorizeVote(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.submissions.RemoveUpvote(ctx, submission.ID, actorID); err != nil {
		return nil, fmt.Errorf("failed to remove upvote: %w", err)
	}
	return s.find(ctx, id)
}

func (s *SubmissionService) authorizeVote(ctx context.Context, id, actorID string) (*models.Submission, models.Role, error) {
	submission, err := s.find(ctx, id)
	if err != nil {
		return nil, models.RoleNone, err
	}
	task, err := s.tasks.FindByID(ctx, submission.TaskID)
	if err != nil {
		return nil, models.RoleNone, lookupError(err, "task")
	}

	role, err := s.authz.CanUpvote(ctx, actorID, submission, task.ClassID)
	if err != nil {
		return nil, models.RoleNone, err
	}
	return submission, role, nil
}

func (s *SubmissionService) find(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "submission")
	}
	return submission, nil
}
