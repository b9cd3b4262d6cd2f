package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/group-study-api/internal/authz"
	"github.com/yukikurage/group-study-api/internal/constants"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/utils"
)

var ErrCodeGenerationFailed = errors.New("failed to generate a unique class code")

// ClassService provides business logic for classes and their memberships.
type ClassService struct {
	classes     repository.ClassRepository
	memberships repository.MembershipRepository
	authz       *authz.Authorizer
}

// NewClassService creates a new ClassService.
func NewClassService(classes repository.ClassRepository, memberships repository.MembershipRepository, authorizer *authz.Authorizer) *ClassService {
	return &ClassService{
		classes:     classes,
		memberships: memberships,
		authz:       authorizer,
	}
}

// CreateClassInput represents parameters to create a new class.
type CreateClassInput struct {
	Name        string
	Description string
	CreatorID   string
}

// CreateClass creates a class with a fresh join code and makes the creator its admin.
func (s *ClassService) CreateClass(ctx context.Context, input CreateClassInput) (*models.Class, error) {
	name, err := validateClassName(input.Name)
	if err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	class := &models.Class{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Code:        code,
		CreatedByID: input.CreatorID,
	}
	if err := s.classes.CreateWithAdmin(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	return class, nil
}

func validateClassName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apierrors.InvalidField("name", "Class name cannot be empty")
	}
	if len(name) > constants.MaxClassNameLength {
		return "", apierrors.InvalidField("name", fmt.Sprintf("Class name must be at most %d characters", constants.MaxClassNameLength))
	}
	return name, nil
}

// uniqueCode draws codes until one is unused by every existing class.
func (s *ClassService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < constants.MaxCodeAttempts; i++ {
		code, err := utils.GenerateClassCode(constants.ClassCodeLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate class code: %w", err)
		}
		exists, err := s.classes.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check class code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func (s *ClassService) ListClasses(ctx context.Context, params utils.PaginationParams) ([]models.Class, int64, error) {
	classes, total, err := s.classes.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, total, nil
}

func (s *ClassService) GetClassByCode(ctx context.Context, code string) (*models.Class, error) {
	class, err := s.classes.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, lookupError(err, "class")
	}
	return class, nil
}

// Members returns the class's memberships with their users.
func (s *ClassService) Members(ctx context.Context, class *models.Class) ([]models.ClassMembership, error) {
	members, err := s.memberships.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list class members: %w", err)
	}
	return members, nil
}

// ListClassesForUser returns every class the user holds a role in, with that role.
func (s *ClassService) ListClassesForUser(ctx context.Context, userID string) ([]models.ClassMembership, error) {
	memberships, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return memberships, nil
}

// RoleOf returns the user's role in the class.
func (s *ClassService) RoleOf(ctx context.Context, userID string, class *models.Class) (models.Role, error) {
	return s.authz.Role(ctx, userID, class.ID)
}

// UpdateClassInput holds the editable class fields. Nil fields are left unchanged.
type UpdateClassInput struct {
	Name        *string
	Description *string
}

func (s *ClassService) UpdateClass(ctx context.Context, class *models.Class, actorID string, input UpdateClassInput) (*models.Class, error) {
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionUpdate); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateClassName(*input.Name)
		if err != nil {
			return nil, err
		}
		class.Name = name
	}
	if input.Description != nil {
		class.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}
	return class, nil
}

// DeleteClass removes the class with all of its tasks, submissions and memberships.
func (s *ClassService) DeleteClass(ctx context.Context, class *models.Class, actorID string) error {
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionDelete); err != nil {
		return err
	}
	if err := s.classes.Delete(ctx, class.ID); err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}
	return nil
}

// RegenerateCode gives the class a new join code. The old code stops working.
func (s *ClassService) RegenerateCode(ctx context.Context, class *models.Class, actorID string) (*models.Class, error) {
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionUpdate); err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	class.Code = code
	if err := s.classes.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to update class code: %w", err)
	}
	return class, nil
}

// Join makes the user a member. The insert only happens if the user holds no role,
// so concurrent joins cannot produce two memberships.
func (s *ClassService) Join(ctx context.Context, class *models.Class, userID string) error {
	err := s.memberships.AddRole(ctx, userID, class.ID, models.RoleMember)
	if errors.Is(err, repository.ErrRoleAlreadyAssigned) {
		return apierrors.Conflicting("You are already a member of this class")
	}
	if err != nil {
		return fmt.Errorf("failed to join class: %w", err)
	}
	return nil
}

// Leave removes every role the user holds in the class.
func (s *ClassService) Leave(ctx context.Context, class *models.Class, userID string) error {
	if userID == class.CreatedByID {
		return apierrors.Invalid("The class creator cannot leave the class")
	}

	has, err := s.memberships.HasAnyRole(ctx, userID, class.ID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !has {
		return apierrors.Missing("membership")
	}

	if err := s.memberships.RemoveAllRoles(ctx, userID, class.ID); err != nil {
		return fmt.Errorf("failed to leave class: %w", err)
	}
	return nil
}

// ChangeRole replaces a member's role. Setting the role a member already has is a no-op.
func (s *ClassService) ChangeRole(ctx context.Context, class *models.Class, actorID, targetID string, role models.Role) error {
	if !role.Valid() {
		return apierrors.InvalidField("new_role", "Role must be one of: member, expert, admin")
	}
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionUpdate); err != nil {
		return err
	}
	if targetID == class.CreatedByID {
		return apierrors.Invalid("The class creator's role cannot be changed")
	}

	has, err := s.memberships.HasAnyRole(ctx, targetID, class.ID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !has {
		return apierrors.Missing("member")
	}

	if err := s.memberships.SetRole(ctx, targetID, class.ID, role); err != nil {
		return fmt.Errorf("failed to change role: %w", err)
	}
	return nil
}

// RemoveMember removes another user from the class.
func (s *ClassService) RemoveMember(ctx context.Context, class *models.Class, actorID, targetID string) error {
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionUpdate); err != nil {
		return err
	}
	if targetID == class.CreatedByID {
		return apierrors.Invalid("The class creator cannot be removed")
	}

	has, err := s.memberships.HasAnyRole(ctx, targetID, class.ID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !has {
		return apierrors.Missing("member")
	}

	if err := s.memberships.RemoveAllRoles(ctx, targetID, class.ID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}
