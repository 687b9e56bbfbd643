package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the shared settlement record for one checkout. Sibling orders
// reference it by foreign key; it deliberately holds no order collection.
//
// SettledAt doubles as the replay guard: a callback settles or cancels a
// payment only while SettledAt is NULL, flipped by a conditional update.
type Payment struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TxnRef        string     `gorm:"column:txn_ref;uniqueIndex;not null"`
	IsPaid        bool       `gorm:"column:is_paid;not null;default:false"`
	SettledAt     *time.Time `gorm:"column:settled_at"`
	BankCode      *string    `gorm:"column:bank_code"`
	BankTranNo    *string    `gorm:"column:bank_tran_no"`
	CardType      *string    `gorm:"column:card_type"`
	PayDate       *string    `gorm:"column:pay_date"`
	OrderInfo     *string    `gorm:"column:order_info"`
	TransactionNo *string    `gorm:"column:transaction_no"`
	ResponseCode  *string    `gorm:"column:response_code"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
