package models

import (
	"time"

	"github.com/google/uuid"
)

// Seller is the storefront owner. UserID is the account that receives
// order notifications for this seller.
type Seller struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	SoldCount int       `gorm:"column:sold_count;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
