package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	ProjectID    uuid.UUID           `json:"project_id"`
	CreatorID    uuid.UUID           `json:"creator_id"`
	AssignedToID *uuid.UUID          `json:"assigned_to_id"`
	DueDate      *time.Time          `json:"due_date"`
	Version      int                 `json:"version"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Creator      *UserDTO            `json:"creator,omitempty"`
	AssignedTo   *UserDTO            `json:"assigned_to,omitempty"`
}

// TaskSuggestionDTO is a task proposed from free text and not yet stored
type TaskSuggestionDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		ProjectID:    task.ProjectID,
		CreatorID:    task.CreatorID,
		AssignedToID: task.AssignedToID,
		DueDate:      task.DueDate,
		Version:      task.Version,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		Creator:      toUserRef(task.Creator),
	}
	if task.AssignedTo != nil {
		dto.AssignedTo = toUserRef(*task.AssignedTo)
	}
	return dto
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	result := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, ToTaskDTO(t))
	}
	return result
}
