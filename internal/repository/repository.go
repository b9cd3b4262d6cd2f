package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/utils"
)

var (
	// ErrRoleAlreadyAssigned is returned by AddRole when the user already holds a role in the class.
	ErrRoleAlreadyAssigned = errors.New("repository: user already holds a role in this class")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByFirebaseUID finds a user by their external identity subject
	FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error)

	// List returns a page of users and the total count
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// Update saves all fields of a user
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user and everything they created, joined or submitted
	Delete(ctx context.Context, id string) error
}

// ClassRepository defines the interface for class data access
type ClassRepository interface {
	// CreateWithAdmin creates a class and makes its creator an admin in one transaction
	CreateWithAdmin(ctx context.Context, class *models.Class) error

	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByCode(ctx context.Context, code string) (*models.Class, error)

	// CodeExists reports whether any class already uses code
	CodeExists(ctx context.Context, code string) (bool, error)

	List(ctx context.Context, params utils.PaginationParams) ([]models.Class, int64, error)
	Update(ctx context.Context, class *models.Class) error

	// Delete removes a class with its memberships, invitations, tasks and their submissions
	Delete(ctx context.Context, id string) error
}

// MembershipRepository stores the single role a user holds in a class.
// Every query goes to the store; nothing is cached.
type MembershipRepository interface {
	// AddRole grants role. It returns ErrRoleAlreadyAssigned if the pair already holds any role.
	AddRole(ctx context.Context, userID, classID string, role models.Role) error

	// SetRole grants role, replacing any role the pair held, in a single statement
	SetRole(ctx context.Context, userID, classID string, role models.Role) error

	// RemoveAllRoles revokes every role the user holds in the class. Removing nothing is not an error.
	RemoveAllRoles(ctx context.Context, userID, classID string) error

	HasAnyRole(ctx context.Context, userID, classID string) (bool, error)

	// RoleOf returns models.RoleNone when the user holds no role
	RoleOf(ctx context.Context, userID, classID string) (models.Role, error)

	ListByClass(ctx context.Context, classID string) ([]models.ClassMembership, error)
	ListByUser(ctx context.Context, userID string) ([]models.ClassMembership, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves a class's tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(ctx context.Context, task *models.Task) error

	// Delete removes a task with its submissions
	Delete(ctx context.Context, id string) error

	// CompleteOverdue marks every ongoing task due before now as completed in one statement
	// and returns how many tasks changed.
	CompleteOverdue(ctx context.Context, now time.Time) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ClassID       string
	Status        *models.TaskStatus
	SortByDueDate bool
	// A zero Limit lists every matching task
	Pagination utils.PaginationParams
}

// SubmissionRepository defines the interface for submission and upvote data access
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error

	// FindByID finds a submission with its upvotes
	FindByID(ctx context.Context, id string) (*models.Submission, error)

	// ListByTask lists a task's submissions with upvotes, optionally only those of userID
	ListByTask(ctx context.Context, taskID string, userID *string) ([]models.Submission, error)

	Update(ctx context.Context, submission *models.Submission) error

	// Delete removes a submission with its upvotes and feedback
	Delete(ctx context.Context, id string) error

	// AddUpvote records an upvote. Voting again is a no-op.
	AddUpvote(ctx context.Context, upvote *models.SubmissionUpvote) error

	// RemoveUpvote withdraws voterID's upvote. Removing nothing is not an error.
	RemoveUpvote(ctx context.Context, submissionID, voterID string) error
}

// FeedbackRepository defines the interface for feedback data access
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	FindByID(ctx context.Context, id string) (*models.Feedback, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]models.Feedback, error)
	Update(ctx context.Context, feedback *models.Feedback) error
	Delete(ctx context.Context, id string) error
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) error
	FindByID(ctx context.Context, id string) (*models.Invitation, error)
	FindByToken(ctx context.Context, token string) (*models.Invitation, error)

	// HasPending reports whether email already has a pending invitation to the class
	HasPending(ctx context.Context, classID, email string) (bool, error)

	ListByClass(ctx context.Context, classID string) ([]models.Invitation, error)

	// ListPendingForEmail lists unexpired pending invitations addressed to email
	ListPendingForEmail(ctx context.Context, email string, now time.Time) ([]models.Invitation, error)

	UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error

	// Accept replaces the user's role in the invitation's class with the invited role
	// and marks the invitation accepted, in one transaction
	Accept(ctx context.Context, invitation *models.Invitation, userID string) error

	Delete(ctx context.Context, id string) error
}
