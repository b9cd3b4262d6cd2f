package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes AutoMigrate does not derive from struct tags
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Sweeper scans ongoing tasks by due date
		{"tasks", "idx_tasks_status_due_date", "status, due_date"},
		{"tasks", "idx_tasks_class_created_at", "class_id, created_at"},

		// Class role breakdown
		{"class_memberships", "idx_class_memberships_class_role", "class_id, role"},

		// A user's submissions for a task
		{"submissions", "idx_submissions_task_user", "task_id, user_id"},

		// Pending invitation lookups
		{"invitations", "idx_invitations_class_status", "class_id, status"},
		{"invitations", "idx_invitations_email_status", "email, status"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", slog.String("index", idx.name), slog.String("table", idx.table))
	}

	return nil
}
