package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/testutil"
	"gorm.io/gorm"
)

type TaskRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repo    TaskRepository
	ctx     context.Context
	owner   *models.User
	bob     *models.User
	project *models.Project
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.repo = NewTaskRepository(suite.db)
	suite.ctx = context.Background()
	suite.owner = testutil.CreateUser(suite.T(), suite.db, "alice", models.RoleTeamLeader)
	suite.bob = testutil.CreateUser(suite.T(), suite.db, "bob", models.RoleTeamMember)
	suite.project = testutil.CreateProject(suite.T(), suite.db, "X", suite.owner, suite.bob)
}

func (suite *TaskRepositoryTestSuite) TestCreateAndFind() {
	task := &models.Task{
		Title:        "Draft roadmap",
		Status:       models.TaskStatusTodo,
		Priority:     models.TaskPriorityHigh,
		ProjectID:    suite.project.ID,
		CreatorID:    suite.owner.ID,
		AssignedToID: &suite.bob.ID,
		Version:      1,
	}
	suite.Require().NoError(suite.repo.Create(suite.ctx, task))

	found, err := suite.repo.FindByID(suite.ctx, task.ID, "Creator", "AssignedTo")
	suite.Require().NoError(err)
	suite.Equal("Draft roadmap", found.Title)
	suite.Equal("alice", found.Creator.Name)
	suite.Require().NotNil(found.AssignedTo)
	suite.Equal("bob", found.AssignedTo.Name)

	_, err = suite.repo.FindByID(suite.ctx, uuid.New())
	suite.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TaskRepositoryTestSuite) TestListByProject_Filters() {
	testutil.CreateTask(suite.T(), suite.db, "a", suite.project, suite.owner, suite.bob)
	b := testutil.CreateTask(suite.T(), suite.db, "b", suite.project, suite.owner, nil)
	suite.Require().NoError(suite.db.Model(b).Update("status", models.TaskStatusDone).Error)

	all, err := suite.repo.ListByProject(suite.ctx, TaskFilter{ProjectID: suite.project.ID})
	suite.Require().NoError(err)
	suite.Len(all, 2)

	done := models.TaskStatusDone
	filtered, err := suite.repo.ListByProject(suite.ctx, TaskFilter{ProjectID: suite.project.ID, Status: &done})
	suite.Require().NoError(err)
	suite.Require().Len(filtered, 1)
	suite.Equal("b", filtered[0].Title)

	assigned, err := suite.repo.ListByProject(suite.ctx, TaskFilter{ProjectID: suite.project.ID, AssignedToID: &suite.bob.ID})
	suite.Require().NoError(err)
	suite.Require().Len(assigned, 1)
	suite.Equal("a", assigned[0].Title)
}

func (suite *TaskRepositoryTestSuite) TestUpdateWithVersion_ClearsAssignee() {
	task := testutil.CreateTask(suite.T(), suite.db, "a", suite.project, suite.owner, suite.bob)

	err := suite.repo.UpdateWithVersion(suite.ctx, task.ID, 1, map[string]interface{}{
		"status":         models.TaskStatusInProgress,
		"assigned_to_id": nil,
	})
	suite.Require().NoError(err)

	found, err := suite.repo.FindByID(suite.ctx, task.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, found.Status)
	suite.Nil(found.AssignedToID)
	suite.Equal(2, found.Version)

	suite.ErrorIs(suite.repo.UpdateWithVersion(suite.ctx, task.ID, 1, map[string]interface{}{"title": "late"}), ErrStaleVersion)
}

func (suite *TaskRepositoryTestSuite) TestDeleteCascade_KeepsActivities() {
	task := testutil.CreateTask(suite.T(), suite.db, "a", suite.project, suite.owner, suite.bob)
	suite.Require().NoError(suite.db.Create(&models.Comment{Text: "hi", TaskID: task.ID, UserID: suite.bob.ID}).Error)
	suite.Require().NoError(suite.db.Create(&models.Notification{RecipientID: suite.bob.ID, Type: models.NotificationTaskAssigned, Title: "a", TaskID: &task.ID, ProjectID: &suite.project.ID}).Error)
	suite.Require().NoError(suite.db.Create(&models.Activity{Action: models.ActionCreatedTask, UserID: suite.owner.ID, ProjectID: suite.project.ID, Details: "d"}).Error)

	suite.Require().NoError(suite.repo.DeleteCascade(suite.ctx, task.ID))

	var comments, notifications, activities int64
	suite.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&comments)
	suite.db.Model(&models.Notification{}).Where("task_id = ?", task.ID).Count(&notifications)
	suite.db.Model(&models.Activity{}).Where("project_id = ?", suite.project.ID).Count(&activities)
	suite.Zero(comments)
	suite.Zero(notifications)
	suite.Equal(int64(1), activities)

	suite.ErrorIs(suite.repo.DeleteCascade(suite.ctx, task.ID), gorm.ErrRecordNotFound)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}
