package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-collab-api/internal/constants"
	"github.com/yukikurage/project-collab-api/internal/dto"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/realtime"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"github.com/yukikurage/project-collab-api/internal/services"
	"github.com/yukikurage/project-collab-api/internal/testutil"
	"gorm.io/gorm"
)

// HandlerTestSuite wires every handler to real services over SQLite
type HandlerTestSuite struct {
	suite.Suite
	db  *gorm.DB
	hub *realtime.Hub

	projectService *services.ProjectService

	projects      *ProjectHandler
	tasks         *TaskHandler
	comments      *CommentHandler
	notifications *NotificationHandler

	leader   *models.User
	member   *models.User
	outsider *models.User
}

// SetupTest runs before each test
func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.db = testutil.NewDB(suite.T())

	// Hub is never started; publishes queue up and are dropped once full
	suite.hub = realtime.NewHub()

	userRepo := repository.NewUserRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	commentRepo := repository.NewCommentRepository(suite.db)
	activityRepo := repository.NewActivityRepository(suite.db)
	notificationRepo := repository.NewNotificationRepository(suite.db)

	activityService := services.NewActivityService(activityRepo, suite.hub)
	notificationService := services.NewNotificationService(notificationRepo, suite.hub)
	suite.projectService = services.NewProjectService(projectRepo, userRepo, activityRepo, activityService, notificationService, suite.hub)
	taskService := services.NewTaskService(taskRepo, projectRepo, activityService, notificationService, nil)
	commentService := services.NewCommentService(commentRepo, taskRepo, projectRepo, activityService, notificationService, suite.hub)

	suite.projects = NewProjectHandler(suite.projectService)
	suite.tasks = NewTaskHandler(taskService)
	suite.comments = NewCommentHandler(commentService)
	suite.notifications = NewNotificationHandler(notificationService)

	suite.leader = testutil.CreateUser(suite.T(), suite.db, "alice", models.RoleTeamLeader)
	suite.member = testutil.CreateUser(suite.T(), suite.db, "bob", models.RoleTeamMember)
	suite.outsider = testutil.CreateUser(suite.T(), suite.db, "mallory", models.RoleTeamMember)
}

// Helper function to create authenticated context
func (suite *HandlerTestSuite) createAuthContext(method, url string, body interface{}, user *models.User, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			var err error
			raw, err = json.Marshal(b)
			suite.Require().NoError(err)
		}
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if user != nil {
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
	}

	return c, w
}

func idParam(id uuid.UUID) gin.Param {
	return gin.Param{Key: "id", Value: id.String()}
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (suite *HandlerTestSuite) newProject() *models.Project {
	return testutil.CreateProject(suite.T(), suite.db, "Launch", suite.leader, suite.member)
}

func (suite *HandlerTestSuite) TestCreateProject_Success() {
	c, w := suite.createAuthContext("POST", "/api/projects", map[string]interface{}{
		"name":        "Launch",
		"description": "Q3 launch",
		"start_date":  "2026-01-01T00:00:00Z",
		"end_date":    "2026-02-01T00:00:00Z",
	}, suite.leader)

	suite.projects.CreateProject(c)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var response dto.ProjectDetailDTO
	suite.decode(w, &response)
	suite.Equal("Launch", response.Name)
	suite.Equal(suite.leader.ID, response.OwnerID)
	suite.Len(response.Members, 1)
	suite.Equal(1, response.Version)
}

func (suite *HandlerTestSuite) TestCreateProject_MemberForbidden() {
	c, w := suite.createAuthContext("POST", "/api/projects", map[string]string{"name": "Launch"}, suite.member)

	suite.projects.CreateProject(c)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "FORBIDDEN")
}

func (suite *HandlerTestSuite) TestCreateProject_InvalidDateRange() {
	c, w := suite.createAuthContext("POST", "/api/projects", map[string]interface{}{
		"name":       "Launch",
		"start_date": "2026-02-01T00:00:00Z",
		"end_date":   "2026-01-01T00:00:00Z",
	}, suite.leader)

	suite.projects.CreateProject(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateProject_Unauthenticated() {
	c, w := suite.createAuthContext("POST", "/api/projects", map[string]string{"name": "Launch"}, nil)

	suite.projects.CreateProject(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestListProjects() {
	suite.newProject()
	testutil.CreateProject(suite.T(), suite.db, "Other", suite.outsider)

	c, w := suite.createAuthContext("GET", "/api/projects", nil, suite.member)
	suite.projects.ListProjects(c)

	suite.Equal(http.StatusOK, w.Code)
	var response struct {
		Projects []dto.ProjectDTO `json:"projects"`
	}
	suite.decode(w, &response)
	suite.Len(response.Projects, 1)
	suite.Equal("Launch", response.Projects[0].Name)
}

func (suite *HandlerTestSuite) TestGetProject() {
	project := suite.newProject()

	tests := []struct {
		name   string
		user   *models.User
		param  gin.Param
		status int
	}{
		{"member", suite.member, idParam(project.ID), http.StatusOK},
		{"outsider", suite.outsider, idParam(project.ID), http.StatusForbidden},
		{"missing", suite.member, idParam(uuid.New()), http.StatusNotFound},
		{"malformed id", suite.member, gin.Param{Key: "id", Value: "42"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			c, w := suite.createAuthContext("GET", "/api/projects/x", nil, tt.user, tt.param)
			suite.projects.GetProject(c)
			suite.Equal(tt.status, w.Code, w.Body.String())
		})
	}
}

func (suite *HandlerTestSuite) TestUpdateProject_ClearsDateWithNull() {
	project := suite.newProject()
	suite.Require().NoError(suite.db.Model(project).Update("end_date", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)).Error)

	c, w := suite.createAuthContext("PUT", "/api/projects/x", `{"name":"Relaunch","end_date":null}`, suite.leader, idParam(project.ID))
	suite.projects.UpdateProject(c)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var response dto.ProjectDetailDTO
	suite.decode(w, &response)
	suite.Equal("Relaunch", response.Name)
	suite.Nil(response.EndDate)
	suite.Equal(2, response.Version)
}

func (suite *HandlerTestSuite) TestUpdateProject_StaleVersion() {
	project := suite.newProject()

	c, w := suite.createAuthContext("PUT", "/api/projects/x", map[string]interface{}{
		"name":             "Relaunch",
		"expected_version": 7,
	}, suite.leader, idParam(project.ID))
	suite.projects.UpdateProject(c)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateProject_MemberForbidden() {
	project := suite.newProject()

	c, w := suite.createAuthContext("PUT", "/api/projects/x", map[string]string{"name": "Mine"}, suite.member, idParam(project.ID))
	suite.projects.UpdateProject(c)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteProject() {
	project := suite.newProject()
	testutil.CreateTask(suite.T(), suite.db, "Ship", project, suite.leader, suite.member)

	c, w := suite.createAuthContext("DELETE", "/api/projects/x", nil, suite.leader, idParam(project.ID))
	suite.projects.DeleteProject(c)
	suite.Equal(http.StatusOK, w.Code)

	var tasks int64
	suite.db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&tasks)
	suite.Zero(tasks)

	c, w = suite.createAuthContext("DELETE", "/api/projects/x", nil, suite.leader, idParam(project.ID))
	suite.projects.DeleteProject(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestMembers_AddAndRemove() {
	project := suite.newProject()

	c, w := suite.createAuthContext("POST", "/api/projects/x/members", map[string]string{"user_id": suite.outsider.ID.String()}, suite.leader, idParam(project.ID))
	suite.projects.AddMember(c)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var detail dto.ProjectDetailDTO
	suite.decode(w, &detail)
	suite.Len(detail.Members, 3)

	c, w = suite.createAuthContext("POST", "/api/projects/x/members", map[string]string{"user_id": suite.outsider.ID.String()}, suite.leader, idParam(project.ID))
	suite.projects.AddMember(c)
	suite.Equal(http.StatusConflict, w.Code)

	c, w = suite.createAuthContext("DELETE", "/api/projects/x/members/y", nil, suite.leader,
		idParam(project.ID), gin.Param{Key: "userId", Value: suite.outsider.ID.String()})
	suite.projects.RemoveMember(c)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	c, w = suite.createAuthContext("DELETE", "/api/projects/x/members/y", nil, suite.leader,
		idParam(project.ID), gin.Param{Key: "userId", Value: suite.leader.ID.String()})
	suite.projects.RemoveMember(c)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestAddMember_InvalidBody() {
	project := suite.newProject()

	c, w := suite.createAuthContext("POST", "/api/projects/x/members", map[string]string{}, suite.leader, idParam(project.ID))
	suite.projects.AddMember(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestTaskLifecycle() {
	project := suite.newProject()

	c, w := suite.createAuthContext("POST", "/api/projects/x/tasks", map[string]interface{}{
		"title":          "Write docs",
		"priority":       "high",
		"assigned_to_id": suite.member.ID.String(),
	}, suite.leader, idParam(project.ID))
	suite.tasks.CreateTask(c)
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	var created dto.TaskDTO
	suite.decode(w, &created)
	suite.Equal(models.TaskStatusTodo, created.Status)
	suite.Equal(models.TaskPriorityHigh, created.Priority)
	suite.Require().NotNil(created.AssignedTo)
	suite.Equal("bob", created.AssignedTo.Name)

	c, w = suite.createAuthContext("PUT", "/api/tasks/x", map[string]interface{}{"status": "in_progress"}, suite.member, idParam(created.ID))
	suite.tasks.UpdateTask(c)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.TaskDTO
	suite.decode(w, &updated)
	suite.Equal(models.TaskStatusInProgress, updated.Status)
	suite.Equal(2, updated.Version)

	c, w = suite.createAuthContext("PUT", "/api/tasks/x", `{"assigned_to_id":null}`, suite.member, idParam(created.ID))
	suite.tasks.UpdateTask(c)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.decode(w, &updated)
	suite.Nil(updated.AssignedToID)

	c, w = suite.createAuthContext("GET", "/api/projects/x/tasks", nil, suite.member, idParam(project.ID))
	c.Request.URL.RawQuery = "status=in_progress"
	suite.tasks.ListTasks(c)
	suite.Equal(http.StatusOK, w.Code)
	var list struct {
		Tasks []dto.TaskDTO `json:"tasks"`
	}
	suite.decode(w, &list)
	suite.Len(list.Tasks, 1)

	c, w = suite.createAuthContext("DELETE", "/api/tasks/x", nil, suite.member, idParam(created.ID))
	suite.tasks.DeleteTask(c)
	suite.Equal(http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("DELETE", "/api/tasks/x", nil, suite.leader, idParam(created.ID))
	suite.tasks.DeleteTask(c)
	suite.Equal(http.StatusOK, w.Code)

	c, w = suite.createAuthContext("GET", "/api/tasks/x", nil, suite.leader, idParam(created.ID))
	suite.tasks.GetTask(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestCreateTask_Validation() {
	project := suite.newProject()

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing title", map[string]string{}},
		{"bad status", map[string]string{"title": "x", "status": "archived"}},
		{"non-member assignee", map[string]string{"title": "x", "assigned_to_id": suite.outsider.ID.String()}},
		{"malformed json", `{"title":`},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			c, w := suite.createAuthContext("POST", "/api/projects/x/tasks", tt.body, suite.leader, idParam(project.ID))
			suite.tasks.CreateTask(c)
			suite.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func (suite *HandlerTestSuite) TestListTasks_InvalidAssigneeFilter() {
	project := suite.newProject()

	c, w := suite.createAuthContext("GET", "/api/projects/x/tasks", nil, suite.member, idParam(project.ID))
	c.Request.URL.RawQuery = "assigned_to=nobody"
	suite.tasks.ListTasks(c)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestUpdateTask_VersionConflict() {
	project := suite.newProject()
	task := testutil.CreateTask(suite.T(), suite.db, "Ship", project, suite.leader, nil)

	c, w := suite.createAuthContext("PUT", "/api/tasks/x", map[string]interface{}{
		"title":            "Ship it",
		"expected_version": 3,
	}, suite.member, idParam(task.ID))
	suite.tasks.UpdateTask(c)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlerTestSuite) TestSuggestTasks_Unavailable() {
	project := suite.newProject()

	c, w := suite.createAuthContext("POST", "/api/projects/x/tasks/suggest", map[string]string{"text": "plan a launch"}, suite.member, idParam(project.ID))
	suite.tasks.SuggestTasks(c)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func (suite *HandlerTestSuite) TestComments() {
	project := suite.newProject()
	task := testutil.CreateTask(suite.T(), suite.db, "Ship", project, suite.leader, suite.leader)

	c, w := suite.createAuthContext("POST", "/api/tasks/x/comments", map[string]string{"text": "Looks good"}, suite.member, idParam(task.ID))
	suite.comments.CreateComment(c)
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	var comment dto.CommentDTO
	suite.decode(w, &comment)
	suite.Equal("Looks good", comment.Text)
	suite.Require().NotNil(comment.User)
	suite.Equal("bob", comment.User.Name)

	c, w = suite.createAuthContext("POST", "/api/tasks/x/comments", map[string]string{"text": "  "}, suite.member, idParam(task.ID))
	suite.comments.CreateComment(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	c, w = suite.createAuthContext("POST", "/api/tasks/x/comments", map[string]string{"text": "hi"}, suite.outsider, idParam(task.ID))
	suite.comments.CreateComment(c)
	suite.Equal(http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("GET", "/api/tasks/x/comments", nil, suite.leader, idParam(task.ID))
	suite.comments.ListComments(c)
	suite.Equal(http.StatusOK, w.Code)
	var list struct {
		Comments []dto.CommentDTO `json:"comments"`
	}
	suite.decode(w, &list)
	suite.Len(list.Comments, 1)
}

func (suite *HandlerTestSuite) TestActivities() {
	project := suite.newProject()
	for i := 0; i < 3; i++ {
		c, w := suite.createAuthContext("POST", "/api/projects/x/tasks", map[string]string{"title": "t"}, suite.leader, idParam(project.ID))
		suite.tasks.CreateTask(c)
		suite.Require().Equal(http.StatusCreated, w.Code)
	}

	c, w := suite.createAuthContext("GET", "/api/projects/x/activities", nil, suite.member, idParam(project.ID))
	c.Request.URL.RawQuery = "page=1&limit=2"
	suite.projects.ListActivities(c)

	suite.Equal(http.StatusOK, w.Code)
	var response dto.ActivityListResponse
	suite.decode(w, &response)
	suite.Len(response.Activities, 2)
	suite.Equal(int64(3), response.Pagination.Total)
	suite.True(response.Pagination.HasMore)
	suite.Equal(models.ActionCreatedTask, response.Activities[0].Action)

	c, w = suite.createAuthContext("GET", "/api/projects/x/activities", nil, suite.member, idParam(project.ID))
	c.Request.URL.RawQuery = "page=2&limit=2"
	suite.projects.ListActivities(c)
	suite.Equal(http.StatusOK, w.Code)
	response = dto.ActivityListResponse{}
	suite.decode(w, &response)
	suite.Len(response.Activities, 1)
	suite.Equal(2, response.Pagination.Page)
	suite.False(response.Pagination.HasMore)

	c, w = suite.createAuthContext("GET", "/api/projects/x/activities", nil, suite.outsider, idParam(project.ID))
	suite.projects.ListActivities(c)
	suite.Equal(http.StatusForbidden, w.Code)

	// Leading a team elsewhere does not open another team's feed.
	otherLeader := testutil.CreateUser(suite.T(), suite.db, "dave", models.RoleTeamLeader)
	c, w = suite.createAuthContext("GET", "/api/projects/x/activities", nil, otherLeader, idParam(project.ID))
	suite.projects.ListActivities(c)
	suite.Equal(http.StatusForbidden, w.Code)

	c, w = suite.createAuthContext("GET", "/api/projects/x", nil, otherLeader, idParam(project.ID))
	suite.projects.GetProject(c)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestNotifications() {
	project := suite.newProject()

	c, w := suite.createAuthContext("POST", "/api/projects/x/tasks", map[string]interface{}{
		"title":          "Review PR",
		"assigned_to_id": suite.member.ID.String(),
	}, suite.leader, idParam(project.ID))
	suite.tasks.CreateTask(c)
	suite.Require().Equal(http.StatusCreated, w.Code)

	c, w = suite.createAuthContext("GET", "/api/notifications/unread-count", nil, suite.member)
	suite.notifications.UnreadCount(c)
	suite.Equal(http.StatusOK, w.Code)
	var count dto.UnreadCountResponse
	suite.decode(w, &count)
	suite.Equal(int64(1), count.Count)

	c, w = suite.createAuthContext("GET", "/api/notifications", nil, suite.member)
	suite.notifications.ListNotifications(c)
	suite.Equal(http.StatusOK, w.Code)
	var list dto.NotificationListResponse
	suite.decode(w, &list)
	suite.Require().Len(list.Notifications, 1)
	notification := list.Notifications[0]
	suite.Equal(models.NotificationTaskAssigned, notification.Type)
	suite.False(notification.IsRead)

	// Another user's notification is not found
	c, w = suite.createAuthContext("PUT", "/api/notifications/x/read", nil, suite.leader, idParam(notification.ID))
	suite.notifications.MarkRead(c)
	suite.Equal(http.StatusNotFound, w.Code)

	for i := 0; i < 2; i++ {
		c, w = suite.createAuthContext("PUT", "/api/notifications/x/read", nil, suite.member, idParam(notification.ID))
		suite.notifications.MarkRead(c)
		suite.Equal(http.StatusOK, w.Code)
		var read dto.NotificationDTO
		suite.decode(w, &read)
		suite.True(read.IsRead)
	}

	c, w = suite.createAuthContext("PUT", "/api/notifications/read-all", nil, suite.member)
	suite.notifications.MarkAllRead(c)
	suite.Equal(http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"updated":0}`, w.Body.String())
}

func (suite *HandlerTestSuite) TestCanJoinTopicMatchesMembership() {
	project := suite.newProject()

	suite.True(suite.projectService.CanJoinTopic(context.Background(), suite.member, project.ID))
	suite.False(suite.projectService.CanJoinTopic(context.Background(), suite.outsider, project.ID))
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
