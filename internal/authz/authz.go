// Package authz decides whether an actor may perform an action on a class or
// on anything that belongs to one. Roles are always read from the store.
//
// Objects the actor cannot read are reported as not found; objects the actor
// can read but not change are reported as forbidden.
package authz

import (
	"context"
	"fmt"

	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ClassPermissions defines what each role can do to the class itself
var ClassPermissions = map[models.Role]map[Action]bool{
	models.RoleAdmin: {
		ActionRead:   true,
		ActionUpdate: true,
		ActionDelete: true,
	},
	models.RoleExpert: {
		ActionRead: true,
	},
	models.RoleMember: {
		ActionRead: true,
	},
}

// TaskPermissions defines what each role can do to the tasks of its class
var TaskPermissions = map[models.Role]map[Action]bool{
	models.RoleAdmin: {
		ActionRead:   true,
		ActionCreate: true,
		ActionUpdate: true,
		ActionDelete: true,
	},
	models.RoleExpert: {
		ActionRead:   true,
		ActionCreate: true,
		ActionUpdate: true,
		ActionDelete: true,
	},
	models.RoleMember: {
		ActionRead: true,
	},
}

// HasPermission checks if a role has permission to perform an action
func HasPermission(permissions map[models.Role]map[Action]bool, role models.Role, action Action) bool {
	actions, ok := permissions[role]
	if !ok {
		return false
	}
	return actions[action]
}

// Reviewer reports whether role may see every submission of a class and give feedback on it.
func Reviewer(role models.Role) bool {
	return role == models.RoleExpert || role == models.RoleAdmin
}

// UpvoteKind is the kind of upvote a voter with role casts.
func UpvoteKind(role models.Role) models.UpvoteKind {
	if Reviewer(role) {
		return models.UpvoteKindExpert
	}
	return models.UpvoteKindUser
}

type Authorizer struct {
	memberships repository.MembershipRepository
}

func NewAuthorizer(memberships repository.MembershipRepository) *Authorizer {
	return &Authorizer{memberships: memberships}
}

// Role returns the actor's role in the class, models.RoleNone for anonymous actors.
func (a *Authorizer) Role(ctx context.Context, actorID, classID string) (models.Role, error) {
	role, err := a.memberships.RoleOf(ctx, actorID, classID)
	if err != nil {
		return models.RoleNone, fmt.Errorf("failed to resolve role: %w", err)
	}
	return role, nil
}

func requireActor(actorID string, action Action) error {
	if actorID == "" && action != ActionRead {
		return apierrors.Unauthenticated("", "Authentication required")
	}
	return nil
}

// CanClass authorizes an action on a class. Classes are public to read.
func (a *Authorizer) CanClass(ctx context.Context, actorID string, class *models.Class, action Action) error {
	if action == ActionRead {
		return nil
	}
	if err := requireActor(actorID, action); err != nil {
		return err
	}
	if actorID == class.CreatedByID {
		return nil
	}

	role, err := a.Role(ctx, actorID, class.ID)
	if err != nil {
		return err
	}
	if HasPermission(ClassPermissions, role, action) {
		return nil
	}
	return apierrors.Denied("Only class admins can perform this action")
}

// CanCreateTask authorizes creating a task in class.
func (a *Authorizer) CanCreateTask(ctx context.Context, actorID string, class *models.Class) error {
	if err := requireActor(actorID, ActionCreate); err != nil {
		return err
	}

	role, err := a.Role(ctx, actorID, class.ID)
	if err != nil {
		return err
	}
	if HasPermission(TaskPermissions, role, ActionCreate) {
		return nil
	}
	return apierrors.Denied("Only experts and admins can create tasks in this class")
}

// CanTask authorizes an action on an existing task. It returns the actor's role
// in the task's class so callers can apply role-dependent visibility.
func (a *Authorizer) CanTask(ctx context.Context, actorID string, task *models.Task, action Action) (models.Role, error) {
	if actorID == "" {
		return models.RoleNone, apierrors.Unauthenticated("", "Authentication required")
	}

	role, err := a.Role(ctx, actorID, task.ClassID)
	if err != nil {
		return models.RoleNone, err
	}
	if role == models.RoleNone {
		return role, apierrors.Missing("task")
	}
	if action == ActionRead {
		return role, nil
	}
	if actorID == task.CreatedByID && (action == ActionUpdate || action == ActionDelete) {
		return role, nil
	}
	if HasPermission(TaskPermissions, role, action) {
		return role, nil
	}
	return role, apierrors.Denied("Only experts and admins can modify tasks")
}

// CanSubmission authorizes reading or changing a submission. Only its owner may.
func (a *Authorizer) CanSubmission(actorID string, submission *models.Submission, _ Action) error {
	if actorID == "" {
		return apierrors.Unauthenticated("", "Authentication required")
	}
	if submission.UserID != actorID {
		return apierrors.Missing("submission")
	}
	return nil
}

// CanReview authorizes reading a submission's feedback or adding to it. The owner
// and the class's reviewers may; other role holders get forbidden, outsiders not found.
func (a *Authorizer) CanReview(ctx context.Context, actorID string, submission *models.Submission, classID string) (models.Role, error) {
	if actorID == "" {
		return models.RoleNone, apierrors.Unauthenticated("", "Authentication required")
	}

	role, err := a.Role(ctx, actorID, classID)
	if err != nil {
		return models.RoleNone, err
	}
	if submission.UserID == actorID || Reviewer(role) {
		return role, nil
	}
	if role == models.RoleNone {
		return role, apierrors.Missing("submission")
	}
	return role, apierrors.Denied("Only the submitter and class experts can review this submission")
}

// CanUpvote authorizes upvoting a submission: any role holder in the class except its owner.
func (a *Authorizer) CanUpvote(ctx context.Context, actorID string, submission *models.Submission, classID string) (models.Role, error) {
	if actorID == "" {
		return models.RoleNone, apierrors.Unauthenticated("", "Authentication required")
	}

	role, err := a.Role(ctx, actorID, classID)
	if err != nil {
		return models.RoleNone, err
	}
	if role == models.RoleNone {
		return role, apierrors.Missing("submission")
	}
	if submission.UserID == actorID {
		return role, apierrors.Invalid("You cannot upvote your own submission")
	}
	return role, nil
}

// CanFeedback authorizes changing feedback. Only its author may.
func (a *Authorizer) CanFeedback(actorID string, feedback *models.Feedback, _ Action) error {
	if actorID == "" {
		return apierrors.Unauthenticated("", "Authentication required")
	}
	if feedback.UserID != actorID {
		return apierrors.Denied("Only the author can change this feedback")
	}
	return nil
}
