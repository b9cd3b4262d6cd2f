package repository

import (
	"context"
	"time"

	"github.com/yukikurage/group-study-api/internal/models"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

func (r *GormInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	return r.db.WithContext(ctx).Create(invitation).Error
}

func (r *GormInvitationRepository) FindByID(ctx context.Context, id string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *GormInvitationRepository) FindByToken(ctx context.Context, token string) (*models.Invitation, error) {
	var invitation models.Invitation
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *GormInvitationRepository) HasPending(ctx context.Context, classID, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("class_id = ? AND email = ? AND status = ?", classID, email, models.InvitationPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormInvitationRepository) ListByClass(ctx context.Context, classID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *GormInvitationRepository) ListPendingForEmail(ctx context.Context, email string, now time.Time) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := r.db.WithContext(ctx).
		Preload("Class").
		Where("email = ? AND status = ? AND expires_at > ?", email, models.InvitationPending, now).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *GormInvitationRepository) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Accept swaps the user's role for the invited one and closes the invitation in a transaction.
// It returns gorm.ErrRecordNotFound if the invitation is no longer pending.
func (r *GormInvitationRepository) Accept(ctx context.Context, invitation *models.Invitation, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Updates(map[string]interface{}{
				"status":          models.InvitationAccepted,
				"invited_user_id": userID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("class_id = ? AND user_id = ?", invitation.ClassID, userID).
			Delete(&models.ClassMembership{}).Error; err != nil {
			return err
		}

		return tx.Create(&models.ClassMembership{
			ClassID:  invitation.ClassID,
			UserID:   userID,
			Role:     invitation.Role,
			JoinedAt: time.Now(),
		}).Error
	})
}

func (r *GormInvitationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invitation{}).Error
}
