package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultNotificationType = "info"

// Notification is addressed to one user; a nil UserID is a broadcast shown
// to everyone.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"          json:"userId,omitempty"`
	Title     string     `gorm:"not null"                 json:"title"`
	Message   string     `gorm:"not null"                 json:"message"`
	Type      string     `gorm:"not null"                 json:"type"`
	Read      bool       `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time  `gorm:"index"                    json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Type == "" {
		n.Type = DefaultNotificationType
	}
	return nil
}
