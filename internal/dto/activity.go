package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/utils"
)

type ActivityDTO struct {
	ID        uuid.UUID              `json:"id"`
	Action    models.ActivityAction  `json:"action"`
	UserID    uuid.UUID              `json:"user_id"`
	ProjectID uuid.UUID              `json:"project_id"`
	Details   string                 `json:"details"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	User      *UserDTO               `json:"user,omitempty"`
}

type ActivityListResponse struct {
	Activities []ActivityDTO            `json:"activities"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func ToActivityDTO(activity models.Activity) ActivityDTO {
	return ActivityDTO{
		ID:        activity.ID,
		Action:    activity.Action,
		UserID:    activity.UserID,
		ProjectID: activity.ProjectID,
		Details:   activity.Details,
		Metadata:  activity.Metadata,
		CreatedAt: activity.CreatedAt,
		User:      toUserRef(activity.User),
	}
}

func ToActivityDTOs(activities []models.Activity) []ActivityDTO {
	result := make([]ActivityDTO, 0, len(activities))
	for _, a := range activities {
		result = append(result, ToActivityDTO(a))
	}
	return result
}
