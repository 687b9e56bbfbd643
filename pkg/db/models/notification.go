package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification stores an in-app notification addressed to one user.
type Notification struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID   uuid.UUID `gorm:"column:creator_id;type:uuid;not null"`
	RecipientID uuid.UUID `gorm:"column:recipient_id;type:uuid;not null;index"`
	Title       string    `gorm:"column:title;type:text;not null"`
	Content     string    `gorm:"column:content;type:text;not null"`
	Link        string    `gorm:"column:link;type:text;not null"`
	IsRead      bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
