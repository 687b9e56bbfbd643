package orders

import (
	"github.com/vuhoang/marketplace-backend/pkg/enums"
)

// actorKind distinguishes the order's customer from everyone else. Any
// authenticated caller who is not the customer acts as the counterparty.
type actorKind int

const (
	actorCustomer actorKind = iota
	actorCounterparty
)

type transitionKey struct {
	actor   actorKind
	current enums.OrderStatus
	target  enums.OrderStatus
}

// allowedTransitions is the whole state machine. A (actor, current, target)
// triple absent from this table is rejected; there is no other mutation path
// for an order's status.
var allowedTransitions = map[transitionKey]struct{}{
	// Counterparty drives the fulfillment path and may cancel before payment.
	{actorCounterparty, enums.OrderStatusPaid, enums.OrderStatusConfirmed}:       {},
	{actorCounterparty, enums.OrderStatusConfirmed, enums.OrderStatusDelivering}: {},
	{actorCounterparty, enums.OrderStatusDelivering, enums.OrderStatusReceived}:  {},
	{actorCounterparty, enums.OrderStatusProcessing, enums.OrderStatusCanceled}:  {},

	// Customer may cancel any time before the order ships.
	{actorCustomer, enums.OrderStatusProcessing, enums.OrderStatusCanceled}: {},
	{actorCustomer, enums.OrderStatusPaid, enums.OrderStatusCanceled}:       {},
	{actorCustomer, enums.OrderStatusConfirmed, enums.OrderStatusCanceled}:  {},

	// Customer confirms receipt. Blocked only from DELIVERING and CANCELED,
	// matching the production guard exactly.
	{actorCustomer, enums.OrderStatusProcessing, enums.OrderStatusReceived}: {},
	{actorCustomer, enums.OrderStatusPaid, enums.OrderStatusReceived}:       {},
	{actorCustomer, enums.OrderStatusConfirmed, enums.OrderStatusReceived}:  {},
}

func transitionAllowed(actor actorKind, current, target enums.OrderStatus) bool {
	_, ok := allowedTransitions[transitionKey{actor: actor, current: current, target: target}]
	return ok
}

// restoresStock reports whether an accepted transition must return reserved
// stock. Every path into CANCELED compensates the reservation taken at
// checkout; CANCELED is terminal so the restore runs at most once.
func restoresStock(target enums.OrderStatus) bool {
	return target == enums.OrderStatusCanceled
}
