package repository

import (
	"github.com/yukikurage/group-study-api/internal/models"
	"gorm.io/gorm"
)

// deleteSubmissions removes submissions with their upvotes and feedback
func deleteSubmissions(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("submission_id IN ?", ids).Delete(&models.SubmissionUpvote{}).Error; err != nil {
		return err
	}
	if err := tx.Where("submission_id IN ?", ids).Delete(&models.Feedback{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Submission{}).Error
}

// deleteTasks removes tasks with their submissions
func deleteTasks(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var submissionIDs []string
	if err := tx.Model(&models.Submission{}).Where("task_id IN ?", ids).Pluck("id", &submissionIDs).Error; err != nil {
		return err
	}
	if err := deleteSubmissions(tx, submissionIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error
}

// deleteClasses removes classes with their memberships, invitations and tasks
func deleteClasses(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var taskIDs []string
	if err := tx.Model(&models.Task{}).Where("class_id IN ?", ids).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if err := deleteTasks(tx, taskIDs); err != nil {
		return err
	}
	if err := tx.Where("class_id IN ?", ids).Delete(&models.Invitation{}).Error; err != nil {
		return err
	}
	if err := tx.Where("class_id IN ?", ids).Delete(&models.ClassMembership{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Class{}).Error
}
