package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityAction string

const (
	ActionCreatedTask    ActivityAction = "created_task"
	ActionUpdatedTask    ActivityAction = "updated_task"
	ActionMovedTask      ActivityAction = "moved_task"
	ActionDeletedTask    ActivityAction = "deleted_task"
	ActionAddedComment   ActivityAction = "added_comment"
	ActionAddedMember    ActivityAction = "added_member"
	ActionRemovedMember  ActivityAction = "removed_member"
	ActionUpdatedProject ActivityAction = "updated_project"
)

// Activity is an append-only audit record scoped to a project.
type Activity struct {
	ID        uuid.UUID         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Action    ActivityAction    `gorm:"type:varchar(32);not null" json:"action"`
	UserID    uuid.UUID         `gorm:"type:varchar(36);not null" json:"user_id"`
	ProjectID uuid.UUID         `gorm:"type:varchar(36);not null;index" json:"project_id"`
	Details   string            `gorm:"type:text;not null" json:"details"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
