package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is immutable once created.
type Comment struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	TaskID    uuid.UUID `gorm:"type:varchar(36);not null;index" json:"task_id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
