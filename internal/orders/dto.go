package orders

import (
	"github.com/google/uuid"

	"github.com/vuhoang/marketplace-backend/pkg/enums"
)

// OrderLine is one requested product in a checkout call.
type OrderLine struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateOrderInput carries everything the checkout saga needs.
type CreateOrderInput struct {
	CustomerID   uuid.UUID
	CustomerName string
	Lines        []OrderLine
	PaymentType  enums.PaymentType
	AddressID    uuid.UUID
	Note         *string
	ClientIP     string
}

// CreateOrderResult returns the sibling orders plus, for gateway payment
// types, the signed redirect URL.
type CreateOrderResult struct {
	Orders      []OrderView `json:"orders"`
	RedirectURL *string     `json:"redirectUrl,omitempty"`
}

// OrderView is the read shape returned by order endpoints.
type OrderView struct {
	ID          uuid.UUID         `json:"id"`
	OrderCode   string            `json:"orderCode"`
	CustomerID  uuid.UUID         `json:"customerId"`
	SellerID    uuid.UUID         `json:"sellerId"`
	AddressID   uuid.UUID         `json:"addressId"`
	PaymentID   uuid.UUID         `json:"paymentId"`
	TotalPrice  int64             `json:"totalPrice"`
	Status      enums.OrderStatus `json:"status"`
	PaymentType enums.PaymentType `json:"paymentType"`
	Note        *string           `json:"note,omitempty"`
	Items       []OrderItemView   `json:"items,omitempty"`
}

type OrderItemView struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Price     int64     `json:"price"`
	Qty       int       `json:"qty"`
}

// UpdateStatusInput carries a requested lifecycle transition.
type UpdateStatusInput struct {
	OrderID     uuid.UUID
	Target      enums.OrderStatus
	ActorUserID uuid.UUID
	ActorName   string
	ActorRole   string
}

// ListInput filters the acting customer's orders.
type ListInput struct {
	CustomerID uuid.UUID
	Status     *enums.OrderStatus
	SellerID   *uuid.UUID
}
