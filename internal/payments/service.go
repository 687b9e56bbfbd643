package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuhoang/marketplace-backend/internal/notifications"
	"github.com/vuhoang/marketplace-backend/internal/orders"
	"github.com/vuhoang/marketplace-backend/internal/products"
	"github.com/vuhoang/marketplace-backend/internal/sellers"
	"github.com/vuhoang/marketplace-backend/pkg/config"
	"github.com/vuhoang/marketplace-backend/pkg/enums"
	pkgerrors "github.com/vuhoang/marketplace-backend/pkg/errors"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
	"github.com/vuhoang/marketplace-backend/pkg/outbox"
)

const (
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
	paramTxnRef         = "vnp_TxnRef"

	guardScope = "payment_return"
	guardTTL   = 24 * time.Hour

	outcomeSuccess = "success"
	outcomeFailed  = "failed"

	successPath = "/marketplace/payment-success"
	failedPath  = "/marketplace/payment-failed"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// replayGuard is the advisory Redis check in front of callback processing.
// The settled_at conditional update is the authoritative guard; this one only
// short-circuits obvious replays.
type replayGuard interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// ReturnResult is the outcome of a gateway callback. The redirect is returned
// in every branch; only database failures abort processing.
type ReturnResult struct {
	RedirectURL string
	Settled     bool
}

// Service builds signed gateway redirect URLs and processes return callbacks.
type Service interface {
	BuildPaymentURL(totalPrice int64, createdAt time.Time, clientIP, txnRef string) (string, error)
	ProcessReturn(ctx context.Context, params map[string]string) (*ReturnResult, error)
}

type service struct {
	repo     Repository
	orders   orders.Repository
	products products.Repository
	sellers  sellers.Repository
	tx       txRunner
	outbox   outboxPublisher
	guard    replayGuard
	gateway  config.GatewayConfig
	frontend config.FrontendConfig
	logg     *logger.Logger
}

// NewService builds the payment service with the required dependencies.
func NewService(
	repo Repository,
	ordersRepo orders.Repository,
	prods products.Repository,
	sellersRepo sellers.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	guard replayGuard,
	gateway config.GatewayConfig,
	frontend config.FrontendConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if prods == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if sellersRepo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if guard == nil {
		return nil, fmt.Errorf("replay guard required")
	}
	if gateway.Secret == "" || gateway.BaseURL == "" {
		return nil, fmt.Errorf("gateway config incomplete")
	}
	return &service{
		repo:     repo,
		orders:   ordersRepo,
		products: prods,
		sellers:  sellersRepo,
		tx:       tx,
		outbox:   outboxSvc,
		guard:    guard,
		gateway:  gateway,
		frontend: frontend,
		logg:     logg,
	}, nil
}

// BuildPaymentURL assembles the gateway parameter set, signs it, and returns
// the final redirect URL. Amount is the total in the gateway's minor units
// (total x 100); the creation date is UTC YYYYMMDDHHmmss.
func (s *service) BuildPaymentURL(totalPrice int64, createdAt time.Time, clientIP, txnRef string) (string, error) {
	if txnRef == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "transaction reference required")
	}
	params := map[string]string{
		"vnp_Version":    s.gateway.Version,
		"vnp_Command":    "pay",
		"vnp_TmnCode":    s.gateway.TmnCode,
		"vnp_Locale":     s.gateway.Locale,
		"vnp_CurrCode":   s.gateway.CurrCode,
		"vnp_ReturnUrl":  s.gateway.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_OrderInfo":  fmt.Sprintf("Thanh toan hoa don. So tien %d", totalPrice),
		"vnp_OrderType":  "Thanh toán hóa đơn",
		"vnp_Amount":     strconv.FormatInt(totalPrice*100, 10),
		"vnp_CreateDate": createdAt.UTC().Format("20060102150405"),
		paramTxnRef:      txnRef,
	}

	canonical := canonicalize(params)
	params[paramSecureHash] = sign(s.gateway.Secret, canonical)

	return s.gateway.BaseURL + "?" + canonicalize(params), nil
}

// ProcessReturn verifies the callback signature and settles or cancels every
// sibling order joined through the Payment's transaction reference. Replays
// return the first outcome without re-applying any stock or counter
// mutations.
func (s *service) ProcessReturn(ctx context.Context, params map[string]string) (*ReturnResult, error) {
	txnRef := params[paramTxnRef]
	if txnRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference missing from callback")
	}

	guardKey := s.guard.IdempotencyKey(guardScope, txnRef)
	if outcome, err := s.guard.Get(ctx, guardKey); err == nil && outcome != "" {
		return s.resultFor(outcome == outcomeSuccess), nil
	}

	given := params[paramSecureHash]
	verifiable := make(map[string]string, len(params))
	for key, value := range params {
		if key == paramSecureHash || key == paramSecureHashType {
			continue
		}
		verifiable[key] = value
	}
	computed := sign(s.gateway.Secret, canonicalize(verifiable))
	settled := given != "" && signaturesEqual(given, computed)

	meta := metaFromParams(params)

	var result *ReturnResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindByTxnRef(ctx, txnRef)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		applied, err := repo.Settle(ctx, payment.ID, settled, meta)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment")
		}
		if !applied {
			// Already processed; repeat the original outcome.
			result = s.resultFor(payment.IsPaid)
			return nil
		}

		if settled {
			if err := s.settleOrders(ctx, tx, payment.ID); err != nil {
				return err
			}
		} else {
			if err := s.cancelOrders(ctx, tx, payment.ID); err != nil {
				return err
			}
		}
		result = s.resultFor(settled)
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := outcomeFailed
	if result.Settled {
		outcome = outcomeSuccess
	}
	if _, err := s.guard.SetNX(ctx, guardKey, outcome, guardTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("replay guard write failed: %v", err))
	}
	return result, nil
}

// settleOrders marks every sibling order PAID and rolls the sold counters
// forward. Stock was already reserved at checkout, so settlement never
// decrements it again. Siblings the customer canceled while the gateway was
// pending keep their terminal state.
func (s *service) settleOrders(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID) error {
	ordersRepo := s.orders.WithTx(tx)
	prods := s.products.WithTx(tx)
	sellersRepo := s.sellers.WithTx(tx)

	siblings, err := ordersRepo.FindOrdersByPayment(ctx, paymentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sibling orders")
	}

	for _, order := range siblings {
		if order.Status == enums.OrderStatusCanceled {
			// Stock went back when the order was canceled; a late settlement
			// must not revive it or count its items as sold.
			continue
		}
		if err := ordersRepo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusPaid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		for _, item := range order.Items {
			if err := prods.IncreaseSoldCount(ctx, item.ProductID, item.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increase product sold count")
			}
			if err := sellersRepo.IncreaseSoldCount(ctx, order.SellerID, item.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increase seller sold count")
			}
		}

		recipient := order.CustomerID
		if order.Seller != nil {
			recipient = order.Seller.UserID
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregatePayment,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: order.CustomerID, Role: "user"},
			Data: notifications.NewOrderPaid(
				order.ID, order.OrderCode, order.CustomerID, recipient, order.PaymentType,
			),
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order paid event")
		}
	}
	return nil
}

// cancelOrders marks every sibling order CANCELED and restores the stock
// reserved at checkout. Siblings already canceled are left alone so their
// stock is restored exactly once.
func (s *service) cancelOrders(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID) error {
	ordersRepo := s.orders.WithTx(tx)
	prods := s.products.WithTx(tx)

	siblings, err := ordersRepo.FindOrdersByPayment(ctx, paymentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sibling orders")
	}

	for _, order := range siblings {
		if order.Status == enums.OrderStatusCanceled {
			continue
		}
		if err := ordersRepo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCanceled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		for _, item := range order.Items {
			if err := prods.Restore(ctx, item.ProductID, item.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}

		recipient := order.CustomerID
		if order.Seller != nil {
			recipient = order.Seller.UserID
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregatePayment,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: order.CustomerID, Role: "user"},
			Data: notifications.NewOrderCanceled(
				order.ID, order.OrderCode, order.CustomerID, recipient, "the customer",
			),
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order canceled event")
		}
	}
	return nil
}

func (s *service) resultFor(settled bool) *ReturnResult {
	path := failedPath
	if settled {
		path = successPath
	}
	return &ReturnResult{
		RedirectURL: s.frontend.BaseURL + path,
		Settled:     settled,
	}
}

func metaFromParams(params map[string]string) GatewayMeta {
	pick := func(key string) *string {
		if value, ok := params[key]; ok && value != "" {
			return &value
		}
		return nil
	}
	return GatewayMeta{
		BankCode:      pick("vnp_BankCode"),
		BankTranNo:    pick("vnp_BankTranNo"),
		CardType:      pick("vnp_CardType"),
		PayDate:       pick("vnp_PayDate"),
		OrderInfo:     pick("vnp_OrderInfo"),
		TransactionNo: pick("vnp_TransactionNo"),
		ResponseCode:  pick("vnp_ResponseCode"),
	}
}
