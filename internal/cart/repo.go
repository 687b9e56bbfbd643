package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuhoang/marketplace-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error)
	DecreaseQty(ctx context.Context, customerID, productID uuid.UUID, qty int) error
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

func (r *repository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DecreaseQty removes purchased quantity from the cart line and deletes the
// line once it reaches zero. The qty floor in the WHERE clause makes the
// update a no-op when the cart changed underneath the checkout.
func (r *repository) DecreaseQty(ctx context.Context, customerID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Exec(`
		UPDATE cart_items
		SET qty = qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE customer_id = ? AND product_id = ? AND qty >= ?
	`, qty, customerID, productID, qty)
	if res.Error != nil {
		return res.Error
	}
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ? AND qty <= 0", customerID, productID).
		Delete(&models.CartItem{}).Error
}
