package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vuhoang/marketplace-backend/pkg/enums"
)

// Order is the per-seller slice of one checkout. A multi-seller checkout
// produces N sibling orders sharing a single Payment.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderCode   string            `gorm:"column:order_code;uniqueIndex;not null"`
	CustomerID  uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	SellerID    uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	AddressID   uuid.UUID         `gorm:"column:address_id;type:uuid;not null"`
	PaymentID   uuid.UUID         `gorm:"column:payment_id;type:uuid;not null;index"`
	TotalPrice  int64             `gorm:"column:total_price;not null"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'processing'"`
	PaymentType enums.PaymentType `gorm:"column:payment_type;type:text;not null"`
	Note        *string           `gorm:"column:note"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Seller      *Seller           `gorm:"foreignKey:SellerID"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
