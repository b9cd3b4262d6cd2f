// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/group-study-api/internal/database"
	"github.com/yukikurage/group-study-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database closed at test cleanup.
// A single connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Username: email, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateClass creates a class owned by creator, who is made its admin.
func CreateClass(t *testing.T, db *gorm.DB, name, code string, creator *models.User) *models.Class {
	t.Helper()
	class := &models.Class{Name: name, Code: code, CreatedByID: creator.ID}
	require.NoError(t, db.Create(class).Error)
	AddRole(t, db, class, creator, models.RoleAdmin)
	return class
}

func AddRole(t *testing.T, db *gorm.DB, class *models.Class, user *models.User, role models.Role) {
	t.Helper()
	require.NoError(t, db.Create(&models.ClassMembership{
		ClassID:  class.ID,
		UserID:   user.ID,
		Role:     role,
		JoinedAt: time.Now(),
	}).Error)
}

func CreateTask(t *testing.T, db *gorm.DB, class *models.Class, creator *models.User, due time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		ClassID:     class.ID,
		Title:       "Read chapter 3",
		CreatedByID: creator.ID,
		DueDate:     due.UTC(),
		Status:      models.TaskStatusOngoing,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func CreateSubmission(t *testing.T, db *gorm.DB, task *models.Task, user *models.User) *models.Submission {
	t.Helper()
	sub := &models.Submission{TaskID: task.ID, UserID: user.ID, Document: "https://docs.example.com/answer"}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

// Tomorrow is a due date that is safely in the future.
func Tomorrow() time.Time {
	return time.Now().Add(24 * time.Hour)
}
