package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/dto"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/middleware"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/services"
)

// InvitationHandler serves class invitations, for class admins and for invitees.
type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

func (h *InvitationHandler) ListClassInvitations(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListForClass(c.Request.Context(), middleware.GetClass(c), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invitations": dto.ToInvitationDTOs(invitations, false),
	})
}

// CreateInvitation invites an email address to the class. The response carries the
// token so the admin can share it.
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateInvitationRequest struct {
		Email string      `json:"email" binding:"required,email"`
		Role  models.Role `json:"role" binding:"omitempty,oneof=member expert admin"`
	}

	var req CreateInvitationRequest
	if !bindJSON(c, &req) {
		return
	}

	invitation, err := h.invitationService.Invite(c.Request.Context(), middleware.GetClass(c), userID, req.Email, req.Role)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	out := dto.ToInvitationDTO(*invitation)
	out.Token = invitation.Token
	c.JSON(http.StatusCreated, out)
}

func (h *InvitationHandler) RevokeInvitation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.invitationService.Revoke(c.Request.Context(), middleware.GetClass(c), userID, c.Param("invitation_id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMyInvitations returns the pending invitations addressed to the caller
func (h *InvitationHandler) ListMyInvitations(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListMine(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invitations": dto.ToInvitationDTOs(invitations, true),
	})
}

func (h *InvitationHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Accept(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}

func (h *InvitationHandler) DeclineInvitation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Decline(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvitationDTO(*invitation))
}
