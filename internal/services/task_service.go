package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yukikurage/group-study-api/internal/authz"
	"github.com/yukikurage/group-study-api/internal/constants"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/utils"
)

// TaskService handles task business logic and the overdue sweep
type TaskService struct {
	taskRepo repository.TaskRepository
	authz    *authz.Authorizer
	logger   *slog.Logger
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, authorizer *authz.Authorizer, logger *slog.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		authz:    authorizer,
		logger:   logger,
		now:      time.Now,
	}
}

// ListTasksInput represents filters for listing a class's tasks
type ListTasksInput struct {
	Status        *models.TaskStatus
	SortByDueDate bool
	Pagination    utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Document    *string
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *models.TaskStatus
	Document    *string
}

// ListTasks returns the class's tasks to anyone holding a role in it
func (s *TaskService) ListTasks(ctx context.Context, class *models.Class, actorID string, input ListTasksInput) ([]models.Task, int64, error) {
	role, err := s.authz.Role(ctx, actorID, class.ID)
	if err != nil {
		return nil, 0, err
	}
	if !authz.HasPermission(authz.TaskPermissions, role, authz.ActionRead) {
		return nil, 0, apierrors.Denied("Join the class to see its tasks")
	}

	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, apierrors.InvalidField("status", "Status must be ongoing or completed")
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		ClassID:       class.ID,
		Status:        input.Status,
		SortByDueDate: input.SortByDueDate,
		Pagination:    input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// CreateTask creates a task in class. Only the class's experts and admins may.
func (s *TaskService) CreateTask(ctx context.Context, class *models.Class, actorID string, input CreateTaskInput) (*models.Task, error) {
	if err := s.authz.CanCreateTask(ctx, actorID, class); err != nil {
		return nil, err
	}

	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if !input.DueDate.After(s.now()) {
		return nil, apierrors.InvalidField("due_date", "Due date must be in the future")
	}
	if input.Document != nil {
		if err := validateDocument("document", *input.Document, false); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		ClassID:     class.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CreatedByID: actorID,
		DueDate:     input.DueDate.UTC(),
		Status:      models.TaskStatusOngoing,
		Document:    emptyToNil(input.Document),
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask returns a task to anyone holding a role in its class
func (s *TaskService) GetTask(ctx context.Context, task *models.Task, actorID string) (*models.Task, error) {
	if _, err := s.authz.CanTask(ctx, actorID, task, authz.ActionRead); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the non-nil fields of input
func (s *TaskService) UpdateTask(ctx context.Context, task *models.Task, actorID string, input UpdateTaskInput) (*models.Task, error) {
	if _, err := s.authz.CanTask(ctx, actorID, task, authz.ActionUpdate); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.DueDate != nil {
		if !input.DueDate.After(s.now()) {
			return nil, apierrors.InvalidField("due_date", "Due date must be in the future")
		}
		task.DueDate = input.DueDate.UTC()
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apierrors.InvalidField("status", "Status must be ongoing or completed")
		}
		task.Status = *input.Status
	}
	if input.Document != nil {
		if err := validateDocument("document", *input.Document, false); err != nil {
			return nil, err
		}
		task.Document = emptyToNil(input.Document)
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task with its submissions
func (s *TaskService) DeleteTask(ctx context.Context, task *models.Task, actorID string) error {
	if _, err := s.authz.CanTask(ctx, actorID, task, authz.ActionDelete); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// FindTask loads a task by id
func (s *TaskService) FindTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "task")
	}
	return task, nil
}

// CompleteOverdue marks every ongoing task whose due date has passed as completed.
// Running it again right away changes nothing.
func (s *TaskService) CompleteOverdue(ctx context.Context) (int64, error) {
	updated, err := s.taskRepo.CompleteOverdue(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to complete overdue tasks: %w", err)
	}

	if updated > 0 {
		s.logger.Info("updated overdue tasks", slog.Int64("count", updated))
	} else {
		s.logger.Info("no overdue tasks")
	}
	return updated, nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apierrors.InvalidField("title", "Title cannot be empty")
	}
	if len(title) > constants.MaxTitleLength {
		return "", apierrors.InvalidField("title", fmt.Sprintf("Title must be at most %d characters", constants.MaxTitleLength))
	}
	return title, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
