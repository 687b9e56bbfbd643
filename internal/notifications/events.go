package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vuhoang/marketplace-backend/pkg/enums"
)

// EventPayload is the notification contract published for every order event.
// Consumers persist it verbatim as a Notification row.
type EventPayload struct {
	CreatorID   uuid.UUID `json:"creatorId"`
	RecipientID uuid.UUID `json:"recipientId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Link        string    `json:"link"`
	IsRead      bool      `json:"isRead"`
}

func orderLink(orderID uuid.UUID) string {
	return fmt.Sprintf("/orders/%s", orderID)
}

// NewOrderCreated notifies a seller that a customer placed an order.
func NewOrderCreated(orderID uuid.UUID, orderCode string, creatorID, recipientID uuid.UUID, creatorName string, paymentType enums.PaymentType) EventPayload {
	return EventPayload{
		CreatorID:   creatorID,
		RecipientID: recipientID,
		Title:       "New order created",
		Content:     fmt.Sprintf("Order #%s has been created by %s with payment type %s", orderCode, creatorName, paymentType),
		Link:        orderLink(orderID),
		IsRead:      false,
	}
}

// NewStatusChanged notifies the opposing party about a lifecycle transition.
func NewStatusChanged(orderID uuid.UUID, orderCode string, creatorID, recipientID uuid.UUID, creatorName string, status enums.OrderStatus) EventPayload {
	return EventPayload{
		CreatorID:   creatorID,
		RecipientID: recipientID,
		Title:       fmt.Sprintf("Order %s status has been changed to %s", orderCode, status),
		Content:     fmt.Sprintf("Order #%s status has been changed to %s by %s", orderCode, status, creatorName),
		Link:        orderLink(orderID),
		IsRead:      false,
	}
}

// NewOrderPaid notifies a seller that settlement succeeded.
func NewOrderPaid(orderID uuid.UUID, orderCode string, creatorID, recipientID uuid.UUID, paymentType enums.PaymentType) EventPayload {
	return EventPayload{
		CreatorID:   creatorID,
		RecipientID: recipientID,
		Title:       fmt.Sprintf("Order %s has been paid successfully", orderCode),
		Content:     fmt.Sprintf("Order #%s has been paid successfully with payment type %s", orderCode, paymentType),
		Link:        orderLink(orderID),
		IsRead:      false,
	}
}

// NewOrderCanceled notifies the opposing party about a cancellation.
func NewOrderCanceled(orderID uuid.UUID, orderCode string, creatorID, recipientID uuid.UUID, creatorName string) EventPayload {
	return EventPayload{
		CreatorID:   creatorID,
		RecipientID: recipientID,
		Title:       fmt.Sprintf("Order %s has been canceled", orderCode),
		Content:     fmt.Sprintf("Order #%s has been canceled by %s", orderCode, creatorName),
		Link:        orderLink(orderID),
		IsRead:      false,
	}
}
