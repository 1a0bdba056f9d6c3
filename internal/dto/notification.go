package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/utils"
)

// ProjectRefDTO is the project summary embedded in a notification
type ProjectRefDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type NotificationDTO struct {
	ID          uuid.UUID               `json:"id"`
	RecipientID uuid.UUID               `json:"recipient_id"`
	Type        models.NotificationType `json:"type"`
	Title       string                  `json:"title"`
	Message     string                  `json:"message"`
	ProjectID   *uuid.UUID              `json:"project_id"`
	TaskID      *uuid.UUID              `json:"task_id"`
	IsRead      bool                    `json:"is_read"`
	CreatedAt   time.Time               `json:"created_at"`
	Project     *ProjectRefDTO          `json:"project,omitempty"`
}

type NotificationListResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

func ToNotificationDTO(n models.Notification) NotificationDTO {
	dto := NotificationDTO{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		ProjectID:   n.ProjectID,
		TaskID:      n.TaskID,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
	if n.Project != nil {
		dto.Project = &ProjectRefDTO{ID: n.Project.ID, Name: n.Project.Name}
	}
	return dto
}

func ToNotificationDTOs(notifications []models.Notification) []NotificationDTO {
	result := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, ToNotificationDTO(n))
	}
	return result
}
