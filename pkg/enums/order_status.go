package enums

// OrderStatus tracks an order through the post-checkout lifecycle.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusReceived   OrderStatus = "received"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// Valid reports whether the value is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusPaid, OrderStatusConfirmed,
		OrderStatusDelivering, OrderStatusReceived, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status has no outgoing transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCanceled
}
