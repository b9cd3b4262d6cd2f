package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yukikurage/group-study-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

var membershipKey = []clause.Column{{Name: "class_id"}, {Name: "user_id"}}

// AddRole inserts the membership only if the pair holds no role yet
func (r *GormMembershipRepository) AddRole(ctx context.Context, userID, classID string, role models.Role) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: membershipKey, DoNothing: true}).
		Create(&models.ClassMembership{
			ClassID:  classID,
			UserID:   userID,
			Role:     role,
			JoinedAt: time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleAlreadyAssigned
	}
	return nil
}

// SetRole upserts the membership role
func (r *GormMembershipRepository) SetRole(ctx context.Context, userID, classID string, role models.Role) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   membershipKey,
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&models.ClassMembership{
			ClassID:  classID,
			UserID:   userID,
			Role:     role,
			JoinedAt: time.Now(),
		}).Error
}

// RemoveAllRoles deletes the membership if there is one
func (r *GormMembershipRepository) RemoveAllRoles(ctx context.Context, userID, classID string) error {
	return r.db.WithContext(ctx).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Delete(&models.ClassMembership{}).Error
}

// HasAnyRole reports whether the user holds a role in the class
func (r *GormMembershipRepository) HasAnyRole(ctx context.Context, userID, classID string) (bool, error) {
	role, err := r.RoleOf(ctx, userID, classID)
	if err != nil {
		return false, err
	}
	return role != models.RoleNone, nil
}

// RoleOf returns the user's role in the class
func (r *GormMembershipRepository) RoleOf(ctx context.Context, userID, classID string) (models.Role, error) {
	if userID == "" {
		return models.RoleNone, nil
	}

	var membership models.ClassMembership
	err := r.db.WithContext(ctx).
		Where("class_id = ? AND user_id = ?", classID, userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RoleNone, nil
	}
	if err != nil {
		return models.RoleNone, err
	}
	return membership.Role, nil
}

// ListByClass lists all members of a class with their user records
func (r *GormMembershipRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassMembership, error) {
	var members []models.ClassMembership
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("class_id = ?", classID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUser lists all classes a user holds a role in
func (r *GormMembershipRepository) ListByUser(ctx context.Context, userID string) ([]models.ClassMembership, error) {
	var memberships []models.ClassMembership
	if err := r.db.WithContext(ctx).
		Preload("Class").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}
