package repository

import (
	"context"

	"github.com/yukikurage/group-study-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubmissionRepository is a GORM implementation of SubmissionRepository
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

func (r *GormSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *GormSubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Upvotes").
		Where("id = ?", id).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *GormSubmissionRepository) ListByTask(ctx context.Context, taskID string, userID *string) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Preload("Upvotes").Where("task_id = ?", taskID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// Update saves the submission's own columns; upvotes are managed separately
func (r *GormSubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(submission).Error
}

func (r *GormSubmissionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSubmissions(tx, []string{id})
	})
}

func (r *GormSubmissionRepository) AddUpvote(ctx context.Context, upvote *models.SubmissionUpvote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}, {Name: "voter_id"}},
			DoNothing: true,
		}).
		Create(upvote).Error
}

func (r *GormSubmissionRepository) RemoveUpvote(ctx context.Context, submissionID, voterID string) error {
	return r.db.WithContext(ctx).
		Where("submission_id = ? AND voter_id = ?", submissionID, voterID).
		Delete(&models.SubmissionUpvote{}).Error
}
