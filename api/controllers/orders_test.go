package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vuhoang/marketplace-backend/api/middleware"
	"github.com/vuhoang/marketplace-backend/internal/orders"
	"github.com/vuhoang/marketplace-backend/pkg/enums"
	pkgerrors "github.com/vuhoang/marketplace-backend/pkg/errors"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
)

type testOrdersService struct {
	createFn       func(ctx context.Context, input orders.CreateOrderInput) (*orders.CreateOrderResult, error)
	updateStatusFn func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderView, error)
	findOneFn      func(ctx context.Context, orderID, actorUserID uuid.UUID) (*orders.OrderView, error)
	listFn         func(ctx context.Context, input orders.ListInput) ([]orders.OrderView, error)
}

func (s *testOrdersService) Create(ctx context.Context, input orders.CreateOrderInput) (*orders.CreateOrderResult, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &orders.CreateOrderResult{}, nil
}

func (s *testOrdersService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderView, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, input)
	}
	return &orders.OrderView{}, nil
}

func (s *testOrdersService) FindOne(ctx context.Context, orderID, actorUserID uuid.UUID) (*orders.OrderView, error) {
	if s.findOneFn != nil {
		return s.findOneFn(ctx, orderID, actorUserID)
	}
	return &orders.OrderView{}, nil
}

func (s *testOrdersService) List(ctx context.Context, input orders.ListInput) ([]orders.OrderView, error) {
	if s.listFn != nil {
		return s.listFn(ctx, input)
	}
	return nil, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestCreateOrderSuccess(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()
	addressID := uuid.New()
	var captured orders.CreateOrderInput
	svc := &testOrdersService{
		createFn: func(ctx context.Context, input orders.CreateOrderInput) (*orders.CreateOrderResult, error) {
			captured = input
			return &orders.CreateOrderResult{Orders: []orders.OrderView{{ID: uuid.New()}}}, nil
		},
	}

	body := `{"products":[{"productId":"` + productID.String() + `","qty":2}],"paymentType":"transfer","addressId":"` + addressID.String() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, customerID)
	req = req.WithContext(middleware.WithUserName(req.Context(), "Alice"))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	resp := httptest.NewRecorder()
	CreateOrder(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.CustomerID != customerID {
		t.Fatal("customer id not taken from context")
	}
	if captured.CustomerName != "Alice" {
		t.Fatalf("unexpected customer name %q", captured.CustomerName)
	}
	if len(captured.Lines) != 1 || captured.Lines[0].ProductID != productID || captured.Lines[0].Qty != 2 {
		t.Fatalf("unexpected lines %v", captured.Lines)
	}
	if captured.PaymentType != enums.PaymentTypeTransfer {
		t.Fatalf("unexpected payment type %s", captured.PaymentType)
	}
	if captured.AddressID != addressID {
		t.Fatal("address id mismatch")
	}
	if captured.ClientIP != "203.0.113.7" {
		t.Fatalf("unexpected client ip %q", captured.ClientIP)
	}
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	CreateOrder(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCreateOrderRejectsBadBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty products", `{"products":[],"paymentType":"cod","addressId":"` + uuid.NewString() + `"}`},
		{"bad payment type", `{"products":[{"productId":"` + uuid.NewString() + `","qty":1}],"paymentType":"wire","addressId":"` + uuid.NewString() + `"}`},
		{"zero qty", `{"products":[{"productId":"` + uuid.NewString() + `","qty":0}],"paymentType":"cod","addressId":"` + uuid.NewString() + `"}`},
		{"missing address", `{"products":[{"productId":"` + uuid.NewString() + `","qty":1}],"paymentType":"cod"}`},
		{"unknown field", `{"products":[{"productId":"` + uuid.NewString() + `","qty":1}],"paymentType":"cod","addressId":"` + uuid.NewString() + `","extra":true}`},
		{"not json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest(http.MethodPost, "/api/v1/orders", tc.body, uuid.New())
			resp := httptest.NewRecorder()
			CreateOrder(&testOrdersService{}, testLogger())(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &testOrdersService{
		findOneFn: func(ctx context.Context, orderID, actorUserID uuid.UUID) (*orders.OrderView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		},
	}
	req := authedRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), "", uuid.New())
	req = addRouteParam(req, "orderId", uuid.NewString())
	resp := httptest.NewRecorder()
	GetOrder(svc, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestGetOrderInvalidID(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/orders/invalid", "", uuid.New())
	req = addRouteParam(req, "orderId", "invalid")
	resp := httptest.NewRecorder()
	GetOrder(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListOrdersAppliesFilters(t *testing.T) {
	sellerID := uuid.New()
	var captured orders.ListInput
	svc := &testOrdersService{
		listFn: func(ctx context.Context, input orders.ListInput) ([]orders.OrderView, error) {
			captured = input
			return []orders.OrderView{}, nil
		},
	}
	req := authedRequest(http.MethodGet, "/api/v1/orders?status=paid&sellerId="+sellerID.String(), "", uuid.New())
	resp := httptest.NewRecorder()
	ListOrders(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Status == nil || *captured.Status != enums.OrderStatusPaid {
		t.Fatalf("status filter not applied: %v", captured.Status)
	}
	if captured.SellerID == nil || *captured.SellerID != sellerID {
		t.Fatalf("seller filter not applied: %v", captured.SellerID)
	}
}

func TestListOrdersRejectsBadStatus(t *testing.T) {
	req := authedRequest(http.MethodGet, "/api/v1/orders?status=shipped", "", uuid.New())
	resp := httptest.NewRecorder()
	ListOrders(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateOrderStatusSuccess(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	var captured orders.UpdateStatusInput
	svc := &testOrdersService{
		updateStatusFn: func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderView, error) {
			captured = input
			return &orders.OrderView{ID: input.OrderID, Status: input.Target}, nil
		},
	}

	req := authedRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"confirmed"}`, userID)
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	UpdateOrderStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.OrderID != orderID || captured.ActorUserID != userID {
		t.Fatal("input identity mismatch")
	}
	if captured.Target != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected target %s", captured.Target)
	}

	var envelope struct {
		Data orders.OrderView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected body status %s", envelope.Data.Status)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	orderID := uuid.New()
	req := authedRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"shipped"}`, uuid.New())
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	UpdateOrderStatus(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateOrderStatusConflict(t *testing.T) {
	orderID := uuid.New()
	svc := &testOrdersService{
		updateStatusFn: func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderView, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot update order status")
		},
	}
	req := authedRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"canceled"}`, uuid.New())
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	UpdateOrderStatus(svc, testLogger())(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
