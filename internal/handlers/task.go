package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/dto"
	apierrors "github.com/yukikurage/project-collab-api/internal/errors"
	"github.com/yukikurage/project-collab-api/internal/middleware"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks of a project
// Can filter by status and assigned_to
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}

	var input services.ListTasksInput
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		id, err := uuid.Parse(assignee)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to")
			return
		}
		input.AssignedToID = &id
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), user, projectID, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
	})
}

// CreateTask creates a new task in a project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title        string              `json:"title" binding:"required"`
		Description  string              `json:"description"`
		Status       models.TaskStatus   `json:"status"`
		Priority     models.TaskPriority `json:"priority"`
		AssignedToID *uuid.UUID          `json:"assigned_to_id"`
		DueDate      *time.Time          `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), user, projectID, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		AssignedToID: req.AssignedToID,
		DueDate:      req.DueDate,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), user, taskID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task. A null assignee or due date clears it.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title           *string              `json:"title"`
		Description     *string              `json:"description"`
		Status          *models.TaskStatus   `json:"status"`
		Priority        *models.TaskPriority `json:"priority"`
		AssignedToID    nullable[uuid.UUID]  `json:"assigned_to_id"`
		DueDate         nullable[time.Time]  `json:"due_date"`
		ExpectedVersion *int                 `json:"expected_version"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), user, taskID, services.UpdateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
		Priority:        req.Priority,
		AssignedToID:    req.AssignedToID.Value,
		ClearAssignee:   req.AssignedToID.cleared(),
		DueDate:         req.DueDate.Value,
		ClearDueDate:    req.DueDate.cleared(),
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task with its comments and notifications
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), user, taskID); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SuggestTasks proposes tasks for a project from free text
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}

	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	generated, err := h.taskService.SuggestTasks(c.Request.Context(), user, projectID, req.Text)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	suggestions := make([]dto.TaskSuggestionDTO, 0, len(generated))
	for _, t := range generated {
		suggestions = append(suggestions, dto.TaskSuggestionDTO{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": suggestions,
		"count": len(suggestions),
	})
}
