package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuhoang/marketplace-backend/pkg/db/models"
	"github.com/vuhoang/marketplace-backend/pkg/enums"
)

// Repository covers order persistence plus the Payment shell created at the
// start of every checkout.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrdersByPayment(ctx context.Context, paymentID uuid.UUID) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	List(ctx context.Context, input ListInput) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Seller").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrdersByPayment(ctx context.Context, paymentID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Seller").
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Seller").
		Scopes(listScope(input))
	var rows []models.Order
	if err := q.Order("orders.created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// listScope restricts the listing to the customer's settled transfer orders.
// COD orders and orders whose payment never completed stay out of it.
func listScope(input ListInput) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Joins("JOIN payments ON payments.id = orders.payment_id").
			Where("orders.customer_id = ?", input.CustomerID).
			Where("payments.is_paid = ?", true).
			Where("orders.payment_type = ?", enums.PaymentTypeTransfer)
		if input.Status != nil {
			q = q.Where("orders.status = ?", *input.Status)
		}
		if input.SellerID != nil {
			q = q.Where("orders.seller_id = ?", *input.SellerID)
		}
		return q
	}
}
