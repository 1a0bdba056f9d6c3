package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the read paths rely on. Single
// column indexes are declared on the models.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Board view filters a project's tasks by column
		{"tasks", "idx_tasks_project_status", "project_id, status"},

		// Activity feed is read newest first per project
		{"activities", "idx_activities_project_created", "project_id, created_at"},

		// Unread badge and inbox listing
		{"notifications", "idx_notifications_recipient_read", "recipient_id, is_read"},
		{"notifications", "idx_notifications_recipient_created", "recipient_id, created_at"},

		{"project_members", "idx_project_members_user_id", "user_id"},
		{"comments", "idx_comments_task_created", "task_id, created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
