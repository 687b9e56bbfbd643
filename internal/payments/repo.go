package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuhoang/marketplace-backend/pkg/db/models"
)

// GatewayMeta is the metadata block a callback writes onto the Payment row.
type GatewayMeta struct {
	BankCode      *string
	BankTranNo    *string
	CardType      *string
	PayDate       *string
	OrderInfo     *string
	TransactionNo *string
	ResponseCode  *string
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByTxnRef(ctx context.Context, txnRef string) (*models.Payment, error)
	// Settle flips the payment from unsettled to settled and records the
	// outcome. Returns false when the payment was already settled, which is
	// how callback replays are detected.
	Settle(ctx context.Context, id uuid.UUID, isPaid bool, meta GatewayMeta) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByTxnRef(ctx context.Context, txnRef string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("txn_ref = ?", txnRef).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Settle(ctx context.Context, id uuid.UUID, isPaid bool, meta GatewayMeta) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND settled_at IS NULL", id).
		Updates(map[string]any{
			"is_paid":        isPaid,
			"settled_at":     time.Now(),
			"bank_code":      meta.BankCode,
			"bank_tran_no":   meta.BankTranNo,
			"card_type":      meta.CardType,
			"pay_date":       meta.PayDate,
			"order_info":     meta.OrderInfo,
			"transaction_no": meta.TransactionNo,
			"response_code":  meta.ResponseCode,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
