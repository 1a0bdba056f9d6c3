package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/authz"
	"github.com/yukikurage/project-collab-api/internal/constants"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	activities    *ActivityService
	notifications *NotificationService
	aiService     TaskGenerator
}

// NewTaskService creates a new TaskService. aiService may be nil.
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	activities *ActivityService,
	notifications *NotificationService,
	aiService TaskGenerator,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		activities:    activities,
		notifications: notifications,
		aiService:     aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	AssignedToID *uuid.UUID
	DueDate      *time.Time
}

// UpdateTaskInput represents input for updating a task. The project of a
// task cannot be changed.
type UpdateTaskInput struct {
	Title           *string
	Description     *string
	Status          *models.TaskStatus
	Priority        *models.TaskPriority
	AssignedToID    *uuid.UUID
	ClearAssignee   bool
	DueDate         *time.Time
	ClearDueDate    bool
	ExpectedVersion *int
}

// ListTasksInput represents filters for listing a project's tasks
type ListTasksInput struct {
	Status       *models.TaskStatus
	AssignedToID *uuid.UUID
}

// CreateTask creates a task in the project, records created_task and
// notifies the assignee unless they are the actor.
func (s *TaskService) CreateTask(ctx context.Context, actor *models.User, projectID uuid.UUID, input CreateTaskInput) (*models.Task, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpTaskCreate, project); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if input.AssignedToID != nil && !project.HasMember(*input.AssignedToID) {
		return nil, ErrAssigneeNotMember
	}

	task := &models.Task{
		Title:        title,
		Description:  input.Description,
		Status:       status,
		Priority:     priority,
		ProjectID:    project.ID,
		CreatorID:    actor.ID,
		AssignedToID: input.AssignedToID,
		DueDate:      input.DueDate,
		Version:      1,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, apierrors.Transient("failed to create task", err)
	}

	s.activities.Record(ctx, ActivityEntry{
		Action:    models.ActionCreatedTask,
		Actor:     actor,
		ProjectID: project.ID,
		Details:   fmt.Sprintf("%s created task \"%s\"", actor.Name, title),
		Metadata:  map[string]interface{}{"taskId": task.ID.String()},
	})

	if task.AssignedToID != nil && *task.AssignedToID != actor.ID {
		s.notifications.Notify(ctx, Notice{
			RecipientID: *task.AssignedToID,
			Type:        models.NotificationTaskAssigned,
			Title:       "New Task Assigned",
			Message:     fmt.Sprintf("%s assigned you \"%s\" in \"%s\"", actor.Name, title, project.Name),
			ProjectID:   &project.ID,
			TaskID:      &task.ID,
		})
	}

	return s.reload(ctx, task.ID)
}

// ListTasks returns the tasks of a project
func (s *TaskService) ListTasks(ctx context.Context, actor *models.User, projectID uuid.UUID, input ListTasksInput) ([]models.Task, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpTaskRead, project); err != nil {
		return nil, err
	}

	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	tasks, err := s.taskRepo.ListByProject(ctx, repository.TaskFilter{
		ProjectID:    project.ID,
		Status:       input.Status,
		AssignedToID: input.AssignedToID,
	})
	if err != nil {
		return nil, apierrors.Transient("failed to list tasks", err)
	}
	return tasks, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(ctx context.Context, actor *models.User, taskID uuid.UUID) (*models.Task, error) {
	task, project, err := loadTask(ctx, s.taskRepo, s.projectRepo, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpTaskRead, project); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies input and records moved_task when the status changed
// or updated_task otherwise.
func (s *TaskService) UpdateTask(ctx context.Context, actor *models.User, taskID uuid.UUID, input UpdateTaskInput) (*models.Task, error) {
	task, project, err := loadTask(ctx, s.taskRepo, s.projectRepo, taskID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpTaskUpdate, project); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	title := task.Title
	if input.Title != nil {
		title = strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}

	oldStatus := task.Status
	newStatus := task.Status
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		newStatus = *input.Status
		fields["status"] = newStatus
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		fields["priority"] = *input.Priority
	}

	newAssignee := task.AssignedToID
	if input.ClearAssignee {
		newAssignee = nil
		fields["assigned_to_id"] = nil
	} else if input.AssignedToID != nil {
		if !project.HasMember(*input.AssignedToID) {
			return nil, ErrAssigneeNotMember
		}
		id := *input.AssignedToID
		newAssignee = &id
		fields["assigned_to_id"] = id
	}

	if input.ClearDueDate {
		fields["due_date"] = nil
	} else if input.DueDate != nil {
		fields["due_date"] = *input.DueDate
	}

	if len(fields) == 0 {
		return task, nil
	}

	expected := task.Version
	if input.ExpectedVersion != nil {
		expected = *input.ExpectedVersion
	}
	if err := s.taskRepo.UpdateWithVersion(ctx, task.ID, expected, fields); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, ErrVersionConflict
		}
		return nil, apierrors.Transient("failed to update task", err)
	}

	statusChanged := newStatus != oldStatus
	if statusChanged {
		s.activities.Record(ctx, ActivityEntry{
			Action:    models.ActionMovedTask,
			Actor:     actor,
			ProjectID: project.ID,
			Details:   fmt.Sprintf("%s moved \"%s\" from %s to %s", actor.Name, title, oldStatus.Label(), newStatus.Label()),
			Metadata: map[string]interface{}{
				"taskId": task.ID.String(),
				"from":   string(oldStatus),
				"to":     string(newStatus),
			},
		})
	} else {
		s.activities.Record(ctx, ActivityEntry{
			Action:    models.ActionUpdatedTask,
			Actor:     actor,
			ProjectID: project.ID,
			Details:   fmt.Sprintf("%s updated task \"%s\"", actor.Name, title),
			Metadata: map[string]interface{}{
				"taskId": task.ID.String(),
				"fields": fieldNames(fields),
			},
		})
	}

	s.notifyTaskChange(ctx, actor, project, task, title, taskChange{
		oldAssignee:   task.AssignedToID,
		newAssignee:   newAssignee,
		statusChanged: statusChanged,
		newStatus:     newStatus,
	})

	return s.reload(ctx, task.ID)
}

type taskChange struct {
	oldAssignee   *uuid.UUID
	newAssignee   *uuid.UUID
	statusChanged bool
	newStatus     models.TaskStatus
}

// notifyTaskChange sends at most one notification per recipient and never
// one to the actor.
func (s *TaskService) notifyTaskChange(ctx context.Context, actor *models.User, project *models.Project, task *models.Task, title string, change taskChange) {
	notified := map[uuid.UUID]bool{actor.ID: true}
	send := func(recipient *uuid.UUID, notice Notice) {
		if recipient == nil || notified[*recipient] {
			return
		}
		notified[*recipient] = true
		notice.RecipientID = *recipient
		notice.ProjectID = &project.ID
		notice.TaskID = &task.ID
		s.notifications.Notify(ctx, notice)
	}

	reassigned := change.newAssignee != nil &&
		(change.oldAssignee == nil || *change.oldAssignee != *change.newAssignee)
	if reassigned {
		send(change.newAssignee, Notice{
			Type:    models.NotificationTaskAssigned,
			Title:   "New Task Assigned",
			Message: fmt.Sprintf("%s assigned you \"%s\" in \"%s\"", actor.Name, title, project.Name),
		})
	}

	if change.statusChanged {
		statusNotice := Notice{
			Type:    models.NotificationTaskStatusChanged,
			Title:   "Task Status Changed",
			Message: fmt.Sprintf("%s moved \"%s\" to %s", actor.Name, title, change.newStatus.Label()),
		}
		send(change.newAssignee, statusNotice)
		send(&task.CreatorID, statusNotice)
		return
	}

	if !reassigned {
		send(change.newAssignee, Notice{
			Type:    models.NotificationTaskUpdated,
			Title:   "Task Updated",
			Message: fmt.Sprintf("%s updated \"%s\"", actor.Name, title),
		})
	}
}

// DeleteTask removes the task with its comments and notifications and
// records deleted_task. Project activity history is kept.
func (s *TaskService) DeleteTask(ctx context.Context, actor *models.User, taskID uuid.UUID) error {
	task, project, err := loadTask(ctx, s.taskRepo, s.projectRepo, taskID)
	if err != nil {
		return err
	}
	if err := authorize(actor, authz.OpTaskDelete, project); err != nil {
		return err
	}

	if err := s.taskRepo.DeleteCascade(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return apierrors.Transient("failed to delete task", err)
	}

	s.activities.Record(ctx, ActivityEntry{
		Action:    models.ActionDeletedTask,
		Actor:     actor,
		ProjectID: project.ID,
		Details:   fmt.Sprintf("%s deleted task \"%s\"", actor.Name, task.Title),
		Metadata:  map[string]interface{}{"taskId": task.ID.String()},
	})
	return nil
}

// SuggestTasks proposes tasks for the project from free text. Nothing is stored.
func (s *TaskService) SuggestTasks(ctx context.Context, actor *models.User, projectID uuid.UUID, text string) ([]GeneratedTask, error) {
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, authz.OpTaskCreate, project); err != nil {
		return nil, err
	}

	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrSuggestTextRequired
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, project.Name, text)
	if err != nil {
		return nil, apierrors.Transient("failed to generate tasks", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, ErrAITooManyTasks
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}
		if !aiTask.Priority.Valid() {
			aiTask.Priority = models.TaskPriorityMedium
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

func (s *TaskService) reload(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Creator", "AssignedTo")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, apierrors.Transient("failed to find task", err)
	}
	return task, nil
}
