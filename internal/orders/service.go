package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuhoang/marketplace-backend/internal/cart"
	"github.com/vuhoang/marketplace-backend/internal/notifications"
	"github.com/vuhoang/marketplace-backend/internal/orderitems"
	"github.com/vuhoang/marketplace-backend/internal/products"
	"github.com/vuhoang/marketplace-backend/pkg/db/models"
	"github.com/vuhoang/marketplace-backend/pkg/enums"
	pkgerrors "github.com/vuhoang/marketplace-backend/pkg/errors"
	"github.com/vuhoang/marketplace-backend/pkg/outbox"
	"github.com/vuhoang/marketplace-backend/pkg/token"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PaymentGateway builds the signed redirect URL for gateway-settled checkouts.
type PaymentGateway interface {
	BuildPaymentURL(totalPrice int64, createdAt time.Time, clientIP, txnRef string) (string, error)
}

// Service defines the checkout saga and the post-settlement lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error)
	FindOne(ctx context.Context, orderID, actorUserID uuid.UUID) (*OrderView, error)
	List(ctx context.Context, input ListInput) ([]OrderView, error)
}

type service struct {
	repo     Repository
	products products.Repository
	cart     cart.Repository
	items    orderitems.Service
	tx       txRunner
	outbox   outboxPublisher
	gateway  PaymentGateway
}

// NewService builds the order service with the required dependencies.
func NewService(repo Repository, prods products.Repository, cartRepo cart.Repository, items orderitems.Service, tx txRunner, outboxSvc outboxPublisher, gateway PaymentGateway) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if prods == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("order item writer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		repo:     repo,
		products: prods,
		cart:     cartRepo,
		items:    items,
		tx:       tx,
		outbox:   outboxSvc,
		gateway:  gateway,
	}, nil
}

// validatedLine pairs a requested quantity with the product snapshot taken at
// checkout time.
type validatedLine struct {
	product  models.Product
	qty      int
	subtotal int64
}

type sellerGroup struct {
	sellerID uuid.UUID
	lines    []validatedLine
	total    int64
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one product")
	}
	if !input.PaymentType.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	for _, line := range input.Lines {
		if line.ProductID == uuid.Nil || line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "each line requires a product id and a positive quantity")
		}
	}

	lines, err := s.validateLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}
	groups := groupBySeller(lines)

	txnRef, err := token.NewCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate correlation token")
	}

	var created []models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		prods := s.products.WithTx(tx)
		cartRepo := s.cart.WithTx(tx)

		// Reserve stock up front. The conditional decrement fails the whole
		// checkout when another transaction drained the stock first.
		for _, line := range lines {
			ok, err := prods.Reserve(ctx, line.product.ID, line.qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("product %s has insufficient stock", line.product.ID)).
					WithDetails(map[string]any{"productId": line.product.ID, "requestedQty": line.qty})
			}
		}

		// One Payment shell per checkout, created unconditionally. Sibling
		// orders join it through payment_id; the txn ref is the only key an
		// external callback carries.
		payment, err := repo.CreatePayment(ctx, &models.Payment{TxnRef: txnRef})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		for _, group := range groups {
			orderCode, err := token.NewCode()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order code")
			}
			order, err := repo.CreateOrder(ctx, &models.Order{
				OrderCode:   orderCode,
				CustomerID:  input.CustomerID,
				SellerID:    group.sellerID,
				AddressID:   input.AddressID,
				PaymentID:   payment.ID,
				TotalPrice:  group.total,
				Status:      enums.OrderStatusProcessing,
				PaymentType: input.PaymentType,
				Note:        input.Note,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}

			itemLines := make([]orderitems.Line, 0, len(group.lines))
			for _, line := range group.lines {
				itemLines = append(itemLines, orderitems.Line{
					ProductID: line.product.ID,
					Price:     line.product.Price,
					Qty:       line.qty,
				})
			}
			items, err := s.items.WriteForOrder(ctx, tx, order.ID, itemLines)
			if err != nil {
				return err
			}
			order.Items = items

			for _, line := range group.lines {
				if err := cartRepo.DecreaseQty(ctx, input.CustomerID, line.product.ID, line.qty); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement cart line")
				}
			}

			recipient := sellerUserID(group.lines)
			event := outbox.DomainEvent{
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: "user"},
				Data: notifications.NewOrderCreated(
					order.ID, order.OrderCode, input.CustomerID, recipient,
					input.CustomerName, input.PaymentType,
				),
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order created event")
			}

			created = append(created, *order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CreateOrderResult{Orders: toViews(created)}
	if input.PaymentType.RequiresGateway() {
		total := int64(0)
		for _, group := range groups {
			total += group.total
		}
		redirect, err := s.gateway.BuildPaymentURL(total, created[0].CreatedAt, input.ClientIP, txnRef)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build payment url")
		}
		result.RedirectURL = &redirect
	}
	return result, nil
}

// validateLines resolves every requested product in one query, rejects
// unknown ids and stock shortfalls, and snapshots live prices.
func (s *service) validateLines(ctx context.Context, requested []OrderLine) ([]validatedLine, error) {
	ids := make([]uuid.UUID, 0, len(requested))
	for _, line := range requested {
		ids = append(ids, line.ProductID)
	}
	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	lines := make([]validatedLine, 0, len(requested))
	for _, line := range requested {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s not found", line.ProductID)).
				WithDetails(map[string]any{"productId": line.ProductID})
		}
		if line.Qty > product.StockQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s has insufficient stock", line.ProductID)).
				WithDetails(map[string]any{
					"productId":    line.ProductID,
					"requestedQty": line.Qty,
					"stockQty":     product.StockQty,
				})
		}
		lines = append(lines, validatedLine{
			product:  product,
			qty:      line.Qty,
			subtotal: product.Price * int64(line.Qty),
		})
	}
	return lines, nil
}

// groupBySeller splits validated lines into one group per seller, preserving
// first-appearance order so sibling orders are created deterministically.
func groupBySeller(lines []validatedLine) []sellerGroup {
	index := make(map[uuid.UUID]int)
	groups := make([]sellerGroup, 0)
	for _, line := range lines {
		i, ok := index[line.product.SellerID]
		if !ok {
			i = len(groups)
			index[line.product.SellerID] = i
			groups = append(groups, sellerGroup{sellerID: line.product.SellerID})
		}
		groups[i].lines = append(groups[i].lines, line)
		groups[i].total += line.subtotal
	}
	return groups
}

func sellerUserID(lines []validatedLine) uuid.UUID {
	for _, line := range lines {
		if line.product.Seller != nil {
			return line.product.Seller.UserID
		}
	}
	return uuid.Nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		actor := actorCounterparty
		if order.CustomerID == input.ActorUserID {
			actor = actorCustomer
		}

		if order.Status == input.Target {
			updated = order
			return nil
		}
		if !transitionAllowed(actor, order.Status, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot update order status")
		}

		if restoresStock(input.Target) {
			prods := s.products.WithTx(tx)
			for _, item := range order.Items {
				if err := prods.Restore(ctx, item.ProductID, item.Qty); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
				}
			}
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, input.Target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = input.Target

		recipient := order.CustomerID
		if actor == actorCustomer && order.Seller != nil {
			recipient = order.Seller.UserID
		}

		eventType := enums.EventOrderStatusChanged
		payload := notifications.NewStatusChanged(
			order.ID, order.OrderCode, input.ActorUserID, recipient,
			input.ActorName, input.Target,
		)
		if input.Target == enums.OrderStatusCanceled {
			eventType = enums.EventOrderCanceled
			payload = notifications.NewOrderCanceled(
				order.ID, order.OrderCode, input.ActorUserID, recipient, input.ActorName,
			)
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole},
			Data:          payload,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue status changed event")
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	view := toView(*updated)
	return &view, nil
}

func (s *service) FindOne(ctx context.Context, orderID, actorUserID uuid.UUID) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	// Strangers get the same answer as a missing order.
	if order.CustomerID != actorUserID && (order.Seller == nil || order.Seller.UserID != actorUserID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := toView(*order)
	return &view, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]OrderView, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toViews(rows), nil
}

func toView(order models.Order) OrderView {
	view := OrderView{
		ID:          order.ID,
		OrderCode:   order.OrderCode,
		CustomerID:  order.CustomerID,
		SellerID:    order.SellerID,
		AddressID:   order.AddressID,
		PaymentID:   order.PaymentID,
		TotalPrice:  order.TotalPrice,
		Status:      order.Status,
		PaymentType: order.PaymentType,
		Note:        order.Note,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}
	return view
}

func toViews(orders []models.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, toView(order))
	}
	return views
}
