package orders

import (
	"context"
	"testing"
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
)

type stubOrdersRepo struct {
	order         *models.Order
	payments      []*models.Payment
	orders        []*models.Order
	updatedStatus enums.OrderStatus
	updateCalls   int
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.payments = append(s.payments, payment)
	return payment, nil
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders = append(s.orders, order)
	return order, nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindOrdersByPayment(ctx context.Context, paymentID uuid.UUID) ([]models.Order, error) {
	rows := make([]models.Order, 0)
	for _, order := range s.orders {
		if order.PaymentID == paymentID {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}

func (s *stubOrdersRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	s.updatedStatus = status
	s.updateCalls++
	return nil
}

func (s *stubOrdersRepo) List(ctx context.Context, input ListInput) ([]models.Order, error) {
	rows := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		rows = append(rows, *order)
	}
	return rows, nil
}

type stockCall struct {
	productID uuid.UUID
	qty       int
}

type stubProductsRepo struct {
	rows        []models.Product
	reserveFail map[uuid.UUID]bool
	reserves    []stockCall
	restores    []stockCall
	soldCounts  []stockCall
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository {
	return s
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	for i := range s.rows {
		if s.rows[i].ID == id {
			return &s.rows[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductsRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	found := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		for _, row := range s.rows {
			if row.ID == id {
				found = append(found, row)
			}
		}
	}
	return found, nil
}

func (s *stubProductsRepo) Reserve(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	if s.reserveFail[productID] {
		return false, nil
	}
	s.reserves = append(s.reserves, stockCall{productID: productID, qty: qty})
	return true, nil
}

func (s *stubProductsRepo) Restore(ctx context.Context, productID uuid.UUID, qty int) error {
	s.restores = append(s.restores, stockCall{productID: productID, qty: qty})
	return nil
}

func (s *stubProductsRepo) IncreaseSoldCount(ctx context.Context, productID uuid.UUID, qty int) error {
	s.soldCounts = append(s.soldCounts, stockCall{productID: productID, qty: qty})
	return nil
}

type cartCall struct {
	customerID uuid.UUID
	productID  uuid.UUID
	qty        int
}

type stubCartRepo struct {
	decrements []cartCall
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.Repository {
	return s
}

func (s *stubCartRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	return nil, nil
}

func (s *stubCartRepo) DecreaseQty(ctx context.Context, customerID, productID uuid.UUID, qty int) error {
	s.decrements = append(s.decrements, cartCall{customerID: customerID, productID: productID, qty: qty})
	return nil
}

type stubItemsWriter struct {
	writes map[uuid.UUID][]orderitems.Line
}

func (s *stubItemsWriter) WriteForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []orderitems.Line) ([]models.OrderItem, error) {
	if s.writes == nil {
		s.writes = make(map[uuid.UUID][]orderitems.Line)
	}
	s.writes[orderID] = lines
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Price:     line.Price,
			Qty:       line.Qty,
		})
	}
	return items, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type gatewayCall struct {
	totalPrice int64
	clientIP   string
	txnRef     string
}

type stubGateway struct {
	calls []gatewayCall
	url   string
}

func (s *stubGateway) BuildPaymentURL(totalPrice int64, createdAt time.Time, clientIP, txnRef string) (string, error) {
	s.calls = append(s.calls, gatewayCall{totalPrice: totalPrice, clientIP: clientIP, txnRef: txnRef})
	return s.url, nil
}

type checkoutFixture struct {
	repo     *stubOrdersRepo
	products *stubProductsRepo
	cart     *stubCartRepo
	items    *stubItemsWriter
	outbox   *stubOutboxPublisher
	gateway  *stubGateway
	svc      Service
}

func newCheckoutFixture(t *testing.T, rows []models.Product) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		repo:     &stubOrdersRepo{},
		products: &stubProductsRepo{rows: rows, reserveFail: map[uuid.UUID]bool{}},
		cart:     &stubCartRepo{},
		items:    &stubItemsWriter{},
		outbox:   &stubOutboxPublisher{},
		gateway:  &stubGateway{url: "https://gateway.example/pay?ref=x"},
	}
	svc, err := NewService(f.repo, f.products, f.cart, f.items, stubTxRunner{}, f.outbox, f.gateway)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	f.svc = svc
	return f
}

func TestCreateSplitsOrdersBySeller(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()
	sellerAUser := uuid.New()
	sellerBUser := uuid.New()
	customerID := uuid.New()
	p1 := models.Product{ID: uuid.New(), SellerID: sellerA, Price: 100, StockQty: 10, Seller: &models.Seller{ID: sellerA, UserID: sellerAUser}}
	p2 := models.Product{ID: uuid.New(), SellerID: sellerA, Price: 250, StockQty: 5, Seller: &models.Seller{ID: sellerA, UserID: sellerAUser}}
	p3 := models.Product{ID: uuid.New(), SellerID: sellerB, Price: 40, StockQty: 8, Seller: &models.Seller{ID: sellerB, UserID: sellerBUser}}
	f := newCheckoutFixture(t, []models.Product{p1, p2, p3})

	result, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:   customerID,
		CustomerName: "Alice",
		Lines: []OrderLine{
			{ProductID: p1.ID, Qty: 2},
			{ProductID: p3.ID, Qty: 1},
			{ProductID: p2.ID, Qty: 1},
		},
		PaymentType: enums.PaymentTypeTransfer,
		AddressID:   uuid.New(),
		ClientIP:    "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}

	if len(f.repo.payments) != 1 {
		t.Fatalf("expected one payment got %d", len(f.repo.payments))
	}
	payment := f.repo.payments[0]
	if len(payment.TxnRef) != 10 {
		t.Fatalf("unexpected txn ref %q", payment.TxnRef)
	}

	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 sibling orders got %d", len(result.Orders))
	}
	first, second := result.Orders[0], result.Orders[1]
	if first.SellerID != sellerA || first.TotalPrice != 450 {
		t.Fatalf("unexpected first order: seller %s total %d", first.SellerID, first.TotalPrice)
	}
	if second.SellerID != sellerB || second.TotalPrice != 40 {
		t.Fatalf("unexpected second order: seller %s total %d", second.SellerID, second.TotalPrice)
	}
	if first.PaymentID != payment.ID || second.PaymentID != payment.ID {
		t.Fatal("sibling orders must share the payment")
	}
	if first.Status != enums.OrderStatusProcessing || second.Status != enums.OrderStatusProcessing {
		t.Fatalf("new orders must start processing, got %s and %s", first.Status, second.Status)
	}
	if first.OrderCode == second.OrderCode {
		t.Fatal("sibling orders must carry distinct order codes")
	}
	if len(f.items.writes[first.ID]) != 2 || len(f.items.writes[second.ID]) != 1 {
		t.Fatalf("unexpected item writes: %d and %d", len(f.items.writes[first.ID]), len(f.items.writes[second.ID]))
	}
	if len(f.products.reserves) != 3 {
		t.Fatalf("expected 3 stock reservations got %d", len(f.products.reserves))
	}
	if len(f.cart.decrements) != 3 {
		t.Fatalf("expected 3 cart decrements got %d", len(f.cart.decrements))
	}

	if len(f.outbox.events) != 2 {
		t.Fatalf("expected 2 created events got %d", len(f.outbox.events))
	}
	for i, event := range f.outbox.events {
		if event.EventType != enums.EventOrderCreated {
			t.Fatalf("unexpected event type %s", event.EventType)
		}
		payload, ok := event.Data.(notifications.EventPayload)
		if !ok {
			t.Fatalf("unexpected event payload %T", event.Data)
		}
		if payload.CreatorID != customerID {
			t.Fatalf("event %d creator mismatch", i)
		}
	}
	if f.outbox.events[0].Data.(notifications.EventPayload).RecipientID != sellerAUser {
		t.Fatal("first event must notify the first seller")
	}
	if f.outbox.events[1].Data.(notifications.EventPayload).RecipientID != sellerBUser {
		t.Fatal("second event must notify the second seller")
	}

	if result.RedirectURL == nil || *result.RedirectURL != f.gateway.url {
		t.Fatalf("expected gateway redirect, got %v", result.RedirectURL)
	}
	if len(f.gateway.calls) != 1 {
		t.Fatalf("expected one gateway call got %d", len(f.gateway.calls))
	}
	call := f.gateway.calls[0]
	if call.totalPrice != 490 {
		t.Fatalf("gateway total mismatch: %d", call.totalPrice)
	}
	if call.txnRef != payment.TxnRef {
		t.Fatal("gateway txn ref must match the payment")
	}
	if call.clientIP != "203.0.113.7" {
		t.Fatalf("gateway client ip mismatch: %s", call.clientIP)
	}
}

func TestCreateCODSkipsGateway(t *testing.T) {
	sellerUser := uuid.New()
	product := models.Product{ID: uuid.New(), SellerID: uuid.New(), Price: 75, StockQty: 3, Seller: &models.Seller{UserID: sellerUser}}
	f := newCheckoutFixture(t, []models.Product{product})

	result, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:  uuid.New(),
		Lines:       []OrderLine{{ProductID: product.ID, Qty: 1}},
		PaymentType: enums.PaymentTypeCOD,
		AddressID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.RedirectURL != nil {
		t.Fatal("cod checkout must not produce a redirect")
	}
	if len(f.gateway.calls) != 0 {
		t.Fatal("cod checkout must not touch the gateway")
	}
	if len(f.repo.payments) != 1 {
		t.Fatal("payment shell is created for every checkout")
	}
}

func TestCreateUnknownProduct(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:  uuid.New(),
		Lines:       []OrderLine{{ProductID: uuid.New(), Qty: 1}},
		PaymentType: enums.PaymentTypeCOD,
		AddressID:   uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
	if len(f.repo.orders) != 0 || len(f.repo.payments) != 0 {
		t.Fatal("nothing may be persisted for an invalid checkout")
	}
}

func TestCreateInsufficientStock(t *testing.T) {
	product := models.Product{ID: uuid.New(), SellerID: uuid.New(), Price: 10, StockQty: 1, Seller: &models.Seller{UserID: uuid.New()}}
	f := newCheckoutFixture(t, []models.Product{product})

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:  uuid.New(),
		Lines:       []OrderLine{{ProductID: product.ID, Qty: 2}},
		PaymentType: enums.PaymentTypeCOD,
		AddressID:   uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
	if len(f.products.reserves) != 0 {
		t.Fatal("validation failure must not reach the reservation step")
	}
}

func TestCreateAllowsExactStockQty(t *testing.T) {
	sellerID := uuid.New()
	product := models.Product{ID: uuid.New(), SellerID: sellerID, Price: 10, StockQty: 4, Seller: &models.Seller{ID: sellerID, UserID: uuid.New()}}
	f := newCheckoutFixture(t, []models.Product{product})

	result, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:  uuid.New(),
		Lines:       []OrderLine{{ProductID: product.ID, Qty: 4}},
		PaymentType: enums.PaymentTypeCOD,
		AddressID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("quantity equal to stock must pass, got %v", err)
	}
	if len(result.Orders) != 1 {
		t.Fatalf("expected one order got %d", len(result.Orders))
	}
	if len(f.products.reserves) != 1 || f.products.reserves[0].qty != 4 {
		t.Fatalf("unexpected reservations %v", f.products.reserves)
	}
}

func TestCreateReservationConflictAbortsCheckout(t *testing.T) {
	product := models.Product{ID: uuid.New(), SellerID: uuid.New(), Price: 10, StockQty: 5, Seller: &models.Seller{UserID: uuid.New()}}
	f := newCheckoutFixture(t, []models.Product{product})
	f.products.reserveFail[product.ID] = true

	_, err := f.svc.Create(context.Background(), CreateOrderInput{
		CustomerID:  uuid.New(),
		Lines:       []OrderLine{{ProductID: product.ID, Qty: 2}},
		PaymentType: enums.PaymentTypeCOD,
		AddressID:   uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error %v", err)
	}
	if len(f.repo.payments) != 0 || len(f.repo.orders) != 0 {
		t.Fatal("failed reservation must abort before any writes")
	}
	if len(f.outbox.events) != 0 {
		t.Fatal("failed checkout must not emit events")
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	product := models.Product{ID: uuid.New(), SellerID: uuid.New(), Price: 10, StockQty: 5}
	f := newCheckoutFixture(t, []models.Product{product})
	base := CreateOrderInput{
		CustomerID:  uuid.New(),
		Lines:       []OrderLine{{ProductID: product.ID, Qty: 1}},
		PaymentType: enums.PaymentTypeCOD,
		AddressID:   uuid.New(),
	}

	missingUser := base
	missingUser.CustomerID = uuid.Nil
	if _, err := f.svc.Create(context.Background(), missingUser); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("missing user: unexpected error %v", err)
	}

	emptyLines := base
	emptyLines.Lines = nil
	if _, err := f.svc.Create(context.Background(), emptyLines); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("empty lines: unexpected error %v", err)
	}

	badPayment := base
	badPayment.PaymentType = enums.PaymentType("wire")
	if _, err := f.svc.Create(context.Background(), badPayment); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("bad payment type: unexpected error %v", err)
	}

	zeroQty := base
	zeroQty.Lines = []OrderLine{{ProductID: product.ID, Qty: 0}}
	if _, err := f.svc.Create(context.Background(), zeroQty); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("zero qty: unexpected error %v", err)
	}
}

func lifecycleOrder(customerID, sellerUser uuid.UUID, status enums.OrderStatus) *models.Order {
	orderID := uuid.New()
	sellerID := uuid.New()
	return &models.Order{
		ID:         orderID,
		OrderCode:  "ordercode1",
		CustomerID: customerID,
		SellerID:   sellerID,
		PaymentID:  uuid.New(),
		TotalPrice: 200,
		Status:     status,
		Seller:     &models.Seller{ID: sellerID, UserID: sellerUser},
		Items: []models.OrderItem{
			{ID: uuid.New(), OrderID: orderID, ProductID: uuid.New(), Price: 100, Qty: 2},
		},
	}
}

func TestUpdateStatusSellerConfirms(t *testing.T) {
	customerID := uuid.New()
	sellerUser := uuid.New()
	f := newCheckoutFixture(t, nil)
	f.repo.order = lifecycleOrder(customerID, sellerUser, enums.OrderStatusPaid)

	view, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     f.repo.order.ID,
		Target:      enums.OrderStatusConfirmed,
		ActorUserID: sellerUser,
		ActorName:   "Bookstore",
		ActorRole:   "user",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Status != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected status %s", view.Status)
	}
	if f.repo.updatedStatus != enums.OrderStatusConfirmed {
		t.Fatalf("repo status mismatch: %s", f.repo.updatedStatus)
	}
	if len(f.products.restores) != 0 {
		t.Fatal("confirm must not touch stock")
	}
	if len(f.outbox.events) != 1 {
		t.Fatalf("expected one event got %d", len(f.outbox.events))
	}
	event := f.outbox.events[0]
	if event.EventType != enums.EventOrderStatusChanged {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload := event.Data.(notifications.EventPayload)
	if payload.RecipientID != customerID {
		t.Fatal("seller-initiated event must notify the customer")
	}
}

func TestUpdateStatusCustomerCancelRestoresStock(t *testing.T) {
	customerID := uuid.New()
	sellerUser := uuid.New()
	f := newCheckoutFixture(t, nil)
	f.repo.order = lifecycleOrder(customerID, sellerUser, enums.OrderStatusPaid)

	view, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     f.repo.order.ID,
		Target:      enums.OrderStatusCanceled,
		ActorUserID: customerID,
		ActorName:   "Alice",
		ActorRole:   "user",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Status != enums.OrderStatusCanceled {
		t.Fatalf("unexpected status %s", view.Status)
	}
	if len(f.products.restores) != 1 {
		t.Fatalf("expected one stock restore got %d", len(f.products.restores))
	}
	restore := f.products.restores[0]
	if restore.productID != f.repo.order.Items[0].ProductID || restore.qty != 2 {
		t.Fatalf("unexpected restore %v", restore)
	}
	if len(f.outbox.events) != 1 || f.outbox.events[0].EventType != enums.EventOrderCanceled {
		t.Fatalf("expected cancel event, got %v", f.outbox.events)
	}
	payload := f.outbox.events[0].Data.(notifications.EventPayload)
	if payload.RecipientID != sellerUser {
		t.Fatal("customer-initiated event must notify the seller")
	}
}

func TestUpdateStatusSameTargetIsNoOp(t *testing.T) {
	customerID := uuid.New()
	f := newCheckoutFixture(t, nil)
	f.repo.order = lifecycleOrder(customerID, uuid.New(), enums.OrderStatusCanceled)

	view, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     f.repo.order.ID,
		Target:      enums.OrderStatusCanceled,
		ActorUserID: customerID,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if view.Status != enums.OrderStatusCanceled {
		t.Fatalf("unexpected status %s", view.Status)
	}
	if f.repo.updateCalls != 0 {
		t.Fatal("same-status request must not write")
	}
	if len(f.products.restores) != 0 {
		t.Fatal("same-status request must not restore stock twice")
	}
	if len(f.outbox.events) != 0 {
		t.Fatal("same-status request must not emit events")
	}
}

func TestUpdateStatusRejectedTransition(t *testing.T) {
	sellerUser := uuid.New()
	f := newCheckoutFixture(t, nil)
	f.repo.order = lifecycleOrder(uuid.New(), sellerUser, enums.OrderStatusProcessing)

	_, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     f.repo.order.ID,
		Target:      enums.OrderStatusConfirmed,
		ActorUserID: sellerUser,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error %v", err)
	}
	if f.repo.updateCalls != 0 || len(f.outbox.events) != 0 {
		t.Fatal("rejected transition must not write")
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	_, err := f.svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:     uuid.New(),
		Target:      enums.OrderStatusCanceled,
		ActorUserID: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFindOneHidesOrdersFromStrangers(t *testing.T) {
	customerID := uuid.New()
	sellerUser := uuid.New()
	f := newCheckoutFixture(t, nil)
	f.repo.order = lifecycleOrder(customerID, sellerUser, enums.OrderStatusPaid)

	if _, err := f.svc.FindOne(context.Background(), f.repo.order.ID, customerID); err != nil {
		t.Fatalf("customer must see the order: %v", err)
	}
	if _, err := f.svc.FindOne(context.Background(), f.repo.order.ID, sellerUser); err != nil {
		t.Fatalf("seller must see the order: %v", err)
	}

	_, err := f.svc.FindOne(context.Background(), f.repo.order.ID, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("stranger must get not found, got %v", err)
	}
}
