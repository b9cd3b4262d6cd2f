package dto

import (
	"time"

	"github.com/yukikurage/group-study-api/internal/models"
)

// ClassDTO represents a class in API responses
type ClassDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassWithRoleDTO represents a class with the caller's role in it
type ClassWithRoleDTO struct {
	ClassDTO
	Role models.Role `json:"role"`
}

// ClassMemberDTO represents a member of a class
type ClassMemberDTO struct {
	User     UserSummaryDTO `json:"user"`
	Role     models.Role    `json:"role"`
	JoinedAt time.Time      `json:"joined_at"`
}

// ClassDetailDTO represents detailed class information. The id arrays list who holds each role.
type ClassDetailDTO struct {
	ClassDTO
	Members  []string         `json:"members"`
	Experts  []string         `json:"experts"`
	Admins   []string         `json:"admins"`
	People   []ClassMemberDTO `json:"people"`
	YourRole *models.Role     `json:"your_role"`
}

// ClassListResponse represents a paginated list of classes
type ClassListResponse struct {
	Classes    []ClassDTO `json:"classes"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalCount int64      `json:"total_count"`
}

func ToClassDTO(class models.Class) ClassDTO {
	return ClassDTO{
		ID:          class.ID,
		Name:        class.Name,
		Description: class.Description,
		Code:        class.Code,
		CreatedBy:   class.CreatedByID,
		CreatedAt:   class.CreatedAt,
		UpdatedAt:   class.UpdatedAt,
	}
}

// ToClassWithRoleDTO converts a membership to a class DTO with role
func ToClassWithRoleDTO(membership models.ClassMembership) ClassWithRoleDTO {
	return ClassWithRoleDTO{
		ClassDTO: ToClassDTO(membership.Class),
		Role:     membership.Role,
	}
}

// ToClassDetailDTO converts a class with its members. yourRole is omitted for anonymous callers.
func ToClassDetailDTO(class models.Class, memberships []models.ClassMembership, yourRole *models.Role) ClassDetailDTO {
	detail := ClassDetailDTO{
		ClassDTO: ToClassDTO(class),
		Members:  []string{},
		Experts:  []string{},
		Admins:   []string{},
		People:   make([]ClassMemberDTO, 0, len(memberships)),
		YourRole: yourRole,
	}

	for _, m := range memberships {
		switch m.Role {
		case models.RoleMember:
			detail.Members = append(detail.Members, m.UserID)
		case models.RoleExpert:
			detail.Experts = append(detail.Experts, m.UserID)
		case models.RoleAdmin:
			detail.Admins = append(detail.Admins, m.UserID)
		}
		detail.People = append(detail.People, ClassMemberDTO{
			User:     ToUserSummaryDTO(m.User),
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return detail
}
