package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
)

type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	User      *UserDTO  `json:"user,omitempty"`
}

// NewCommentEvent is the raw domain event pushed to the project topic
type NewCommentEvent struct {
	Comment CommentDTO `json:"comment"`
	TaskID  uuid.UUID  `json:"taskId"`
}

func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		Text:      comment.Text,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		CreatedAt: comment.CreatedAt,
		User:      toUserRef(comment.User),
	}
}

func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	result := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		result = append(result, ToCommentDTO(c))
	}
	return result
}
