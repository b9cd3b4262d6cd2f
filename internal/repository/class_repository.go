package repository

import (
	"context"
	"time"

	"github.com/yukikurage/group-study-api/internal/database"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/utils"
	"gorm.io/gorm"
)

// GormClassRepository is a GORM implementation of ClassRepository
type GormClassRepository struct {
	db *gorm.DB
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &GormClassRepository{db: db}
}

// CreateWithAdmin creates a class and its creator's admin membership in a transaction
func (r *GormClassRepository) CreateWithAdmin(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(class).Error; err != nil {
			return err
		}

		return tx.Create(&models.ClassMembership{
			ClassID:  class.ID,
			UserID:   class.CreatedByID,
			Role:     models.RoleAdmin,
			JoinedAt: time.Now(),
		}).Error
	})
}

// FindByID finds a class by ID
func (r *GormClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&class).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByCode finds a class by its join code
func (r *GormClassRepository) FindByCode(ctx context.Context, code string) (*models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&class).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

// CodeExists reports whether a class already uses code
func (r *GormClassRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Class{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a page of classes, newest first
func (r *GormClassRepository) List(ctx context.Context, params utils.PaginationParams) ([]models.Class, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Class{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&classes).Error; err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

// Update updates a class
func (r *GormClassRepository) Update(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Save(class).Error
}

// Delete deletes a class and all related data in a transaction
func (r *GormClassRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteClasses(tx, []string{id})
	})
}
