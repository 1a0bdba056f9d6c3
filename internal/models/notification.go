package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTaskAssigned      NotificationType = "task_assigned"
	NotificationTaskUpdated       NotificationType = "task_updated"
	NotificationTaskStatusChanged NotificationType = "task_status_changed"
	NotificationCommentAdded      NotificationType = "comment_added"
	NotificationMemberAdded       NotificationType = "member_added"
	NotificationMemberRemoved     NotificationType = "member_removed"
)

type Notification struct {
	ID          uuid.UUID        `gorm:"type:varchar(36);primaryKey" json:"id"`
	RecipientID uuid.UUID        `gorm:"type:varchar(36);not null;index" json:"recipient_id"`
	Type        NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	ProjectID   *uuid.UUID       `gorm:"type:varchar(36);index" json:"project_id"`
	TaskID      *uuid.UUID       `gorm:"type:varchar(36);index" json:"task_id"`
	IsRead      bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
