package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog listing owned by the catalog collaborator. This core
// only reads price/stock and issues stock/sold-count mutations.
type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Title     string    `gorm:"column:title;not null"`
	Price     int64     `gorm:"column:price;not null"`
	StockQty  int       `gorm:"column:stock_qty;not null;default:0"`
	SoldCount int       `gorm:"column:sold_count;not null;default:0"`
	Seller    *Seller   `gorm:"foreignKey:SellerID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
