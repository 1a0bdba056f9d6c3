package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	JoinedAt  time.Time `json:"joined_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
