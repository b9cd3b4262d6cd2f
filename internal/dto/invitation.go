package dto

import (
	"time"

	"github.com/yukikurage/group-study-api/internal/models"
)

// InvitationDTO represents an invitation. The token is only shown to the class admin who created it.
type InvitationDTO struct {
	ID          string                  `json:"id"`
	ClassID     string                  `json:"class_id"`
	Class       *ClassDTO               `json:"class,omitempty"`
	Email       string                  `json:"email"`
	Role        models.Role             `json:"role"`
	Status      models.InvitationStatus `json:"status"`
	InvitedBy   string                  `json:"invited_by"`
	InvitedUser *string                 `json:"invited_user"`
	Token       string                  `json:"token,omitempty"`
	ExpiresAt   time.Time               `json:"expires_at"`
	CreatedAt   time.Time               `json:"created_at"`
}

func ToInvitationDTO(invitation models.Invitation) InvitationDTO {
	out := InvitationDTO{
		ID:          invitation.ID,
		ClassID:     invitation.ClassID,
		Email:       invitation.Email,
		Role:        invitation.Role,
		Status:      invitation.Status,
		InvitedBy:   invitation.InvitedByID,
		InvitedUser: invitation.InvitedUserID,
		ExpiresAt:   invitation.ExpiresAt,
		CreatedAt:   invitation.CreatedAt,
	}
	if invitation.Class.ID != "" {
		class := ToClassDTO(invitation.Class)
		out.Class = &class
	}
	return out
}

// ToInvitationDTOs converts invitations. The invitee finds the token in their list so they can answer it.
func ToInvitationDTOs(invitations []models.Invitation, withToken bool) []InvitationDTO {
	out := make([]InvitationDTO, len(invitations))
	for i, inv := range invitations {
		out[i] = ToInvitationDTO(inv)
		if withToken {
			out[i].Token = inv.Token
		}
	}
	return out
}
