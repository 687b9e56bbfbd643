package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the immutable price/quantity snapshot taken at checkout.
// Catalog price changes after checkout never touch these rows.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Price     int64     `gorm:"column:price;not null"`
	Qty       int       `gorm:"column:qty;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
