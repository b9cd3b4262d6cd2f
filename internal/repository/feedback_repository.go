package repository

import (
	"context"

	"github.com/yukikurage/group-study-api/internal/models"
	"gorm.io/gorm"
)

// GormFeedbackRepository is a GORM implementation of FeedbackRepository
type GormFeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &GormFeedbackRepository{db: db}
}

func (r *GormFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *GormFeedbackRepository) FindByID(ctx context.Context, id string) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *GormFeedbackRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.Feedback, error) {
	var feedback []models.Feedback
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *GormFeedbackRepository) Update(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}

func (r *GormFeedbackRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Feedback{}).Error
}
