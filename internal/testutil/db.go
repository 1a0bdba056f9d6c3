// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-collab-api/internal/database"
	"github.com/yukikurage/project-collab-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database and installs it as the
// package-level database.DB. It is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.Models()...))
	require.NoError(t, database.AddIndexes(db))
	database.SetDB(db)

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project owned by owner with the given extra members.
func CreateProject(t *testing.T, db *gorm.DB, name string, owner *models.User, members ...*models.User) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, OwnerID: owner.ID, Version: 1}
	require.NoError(t, db.Omit("Owner", "Members").Create(project).Error)

	all := append([]*models.User{owner}, members...)
	for _, u := range all {
		m := models.ProjectMember{ProjectID: project.ID, UserID: u.ID}
		require.NoError(t, db.Omit("User").Create(&m).Error)
		project.Members = append(project.Members, m)
	}
	return project
}

// CreateTask inserts a todo task in project.
func CreateTask(t *testing.T, db *gorm.DB, title string, project *models.Project, creator *models.User, assignee *models.User) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:     title,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		ProjectID: project.ID,
		CreatorID: creator.ID,
		Version:   1,
	}
	if assignee != nil {
		task.AssignedToID = &assignee.ID
	}
	require.NoError(t, db.Omit("Project", "Creator", "AssignedTo").Create(task).Error)
	return task
}
