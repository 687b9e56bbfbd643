package orderitems

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuhoang/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/vuhoang/marketplace-backend/pkg/errors"
)

// Line is one product snapshot to persist for an order. Price is the unit
// price captured at checkout time, not a reference to the live product row.
type Line struct {
	ProductID uuid.UUID
	Price     int64
	Qty       int
}

// Service persists immutable order item snapshots.
type Service interface {
	WriteForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []Line) ([]models.OrderItem, error)
}

type service struct{}

func NewService() Service {
	return service{}
}

func (service) WriteForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []Line) ([]models.OrderItem, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		items = append(items, models.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Price:     line.Price,
			Qty:       line.Qty,
		})
	}

	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order items")
	}
	return items, nil
}
