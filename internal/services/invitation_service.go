package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/group-study-api/internal/authz"
	"github.com/yukikurage/group-study-api/internal/constants"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/utils"
	"gorm.io/gorm"
)

// InvitationService handles invitations to join a class with a given role.
type InvitationService struct {
	invitations repository.InvitationRepository
	users       repository.UserRepository
	memberships repository.MembershipRepository
	authz       *authz.Authorizer
	ttl         time.Duration
	now         func() time.Time
}

func NewInvitationService(
	invitations repository.InvitationRepository,
	users repository.UserRepository,
	memberships repository.MembershipRepository,
	authorizer *authz.Authorizer,
	ttl time.Duration,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		users:       users,
		memberships: memberships,
		authz:       authorizer,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Invite creates a pending invitation for email. Class admins only.
func (s *InvitationService) Invite(ctx context.Context, class *models.Class, actorID, email string, role models.Role) (*models.Invitation, error) {
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionUpdate); err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierrors.InvalidField("email", "A valid email address is required")
	}
	if role == models.RoleNone {
		role = models.RoleMember
	}
	if !role.Valid() {
		return nil, apierrors.InvalidField("role", "Role must be one of: member, expert, admin")
	}

	invitation := &models.Invitation{
		ClassID:     class.ID,
		InvitedByID: actorID,
		Email:       email,
		Role:        role,
		ExpiresAt:   s.now().UTC().Add(s.ttl),
	}

	invitee, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		has, err := s.memberships.HasAnyRole(ctx, invitee.ID, class.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if has {
			return nil, apierrors.Conflicting("This user is already a member of the class")
		}
		invitation.InvitedUserID = &invitee.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	pending, err := s.invitations.HasPending(ctx, class.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitations: %w", err)
	}
	if pending {
		return nil, apierrors.Conflicting("This email already has a pending invitation to the class")
	}

	token, err := utils.GenerateToken(constants.InviteTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}
	invitation.Token = token

	if err := s.invitations.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return invitation, nil
}

// ListForClass lists every invitation of the class. Class admins only.
func (s *InvitationService) ListForClass(ctx context.Context, class *models.Class, actorID string) ([]models.Invitation, error) {
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionUpdate); err != nil {
		return nil, err
	}

	invitations, err := s.invitations.ListByClass(ctx, class.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// ListMine lists the pending invitations addressed to the actor's email.
func (s *InvitationService) ListMine(ctx context.Context, actorID string) ([]models.Invitation, error) {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, lookupError(err, "user")
	}

	invitations, err := s.invitations.ListPendingForEmail(ctx, user.Email, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// Accept grants the invited role, replacing any role the actor already held.
func (s *InvitationService) Accept(ctx context.Context, token, actorID string) (*models.Invitation, error) {
	invitation, err := s.addressedTo(ctx, token, actorID)
	if err != nil {
		return nil, err
	}

	if invitation.Expired(s.now()) {
		if err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationExpired); err != nil {
			return nil, fmt.Errorf("failed to expire invitation: %w", err)
		}
		return nil, apierrors.Invalid("This invitation has expired")
	}

	if err := s.invitations.Accept(ctx, invitation, actorID); err != nil {
		return nil, lookupError(err, "invitation")
	}
	invitation.Status = models.InvitationAccepted
	invitation.InvitedUserID = &actorID
	return invitation, nil
}

// Decline closes the invitation without granting anything.
func (s *InvitationService) Decline(ctx context.Context, token, actorID string) (*models.Invitation, error) {
	invitation, err := s.addressedTo(ctx, token, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.invitations.UpdateStatus(ctx, invitation.ID, models.InvitationDeclined); err != nil {
		return nil, fmt.Errorf("failed to decline invitation: %w", err)
	}
	invitation.Status = models.InvitationDeclined
	return invitation, nil
}

// Revoke deletes a pending invitation of the class. Class admins only.
func (s *InvitationService) Revoke(ctx context.Context, class *models.Class, actorID, invitationID string) error {
	if err := s.authz.CanClass(ctx, actorID, class, authz.ActionUpdate); err != nil {
		return err
	}

	invitation, err := s.invitations.FindByID(ctx, invitationID)
	if err != nil {
		return lookupError(err, "invitation")
	}
	if invitation.ClassID != class.ID {
		return apierrors.Missing("invitation")
	}
	if invitation.Status != models.InvitationPending {
		return apierrors.Invalid("Only pending invitations can be revoked")
	}

	if err := s.invitations.Delete(ctx, invitation.ID); err != nil {
		return fmt.Errorf("failed to revoke invitation: %w", err)
	}
	return nil
}

// addressedTo loads a pending invitation and hides it from anyone but its addressee.
func (s *InvitationService) addressedTo(ctx context.Context, token, actorID string) (*models.Invitation, error) {
	invitation, err := s.invitations.FindByToken(ctx, token)
	if err != nil {
		return nil, lookupError(err, "invitation")
	}
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, lookupError(err, "user")
	}

	if invitation.Email != normalizeEmail(user.Email) || invitation.Status != models.InvitationPending {
		return nil, apierrors.Missing("invitation")
	}
	return invitation, nil
}
