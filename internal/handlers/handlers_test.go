package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/middleware"
	"github.com/nikolayk812/checkout-demo/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type fakeOrderService struct {
	createOrder   func(in service.CreateOrderInput) (domain.Order, error)
	createPayment func(orderID uuid.UUID, actor domain.Actor) (string, error)
	confirm       func(c domain.PaymentConfirmation) (service.WebhookResult, error)
	cancel        func(orderID uuid.UUID, actor domain.Actor) (domain.Order, error)
	list          func(customerID string) ([]domain.Order, error)
}

func (f *fakeOrderService) CreateOrder(_ context.Context, in service.CreateOrderInput) (domain.Order, error) {
	return f.createOrder(in)
}

func (f *fakeOrderService) CreatePaymentSession(_ context.Context, orderID uuid.UUID, actor domain.Actor) (string, error) {
	return f.createPayment(orderID, actor)
}

func (f *fakeOrderService) HandlePaymentConfirmed(_ context.Context, c domain.PaymentConfirmation) (service.WebhookResult, error) {
	return f.confirm(c)
}

func (f *fakeOrderService) CancelOrder(_ context.Context, orderID uuid.UUID, actor domain.Actor) (domain.Order, error) {
	return f.cancel(orderID, actor)
}

func (f *fakeOrderService) ListOrders(_ context.Context, customerID string) ([]domain.Order, error) {
	return f.list(customerID)
}

type fakeWebhookParser struct {
	confirmation domain.PaymentConfirmation
	ok           bool
	err          error

	gotSignature string
}

func (f *fakeWebhookParser) Parse(_ []byte, signature string) (domain.PaymentConfirmation, bool, error) {
	f.gotSignature = signature
	return f.confirmation, f.ok, f.err
}

type fakeCartService struct {
	get    func(customerID string) (domain.Cart, error)
	add    func(customerID string, productID uuid.UUID, quantity int) (domain.Cart, error)
	remove func(customerID string, productID uuid.UUID) (domain.Cart, error)
	update func(customerID string, productID uuid.UUID, quantity int) (domain.Cart, error)
}

func (f *fakeCartService) Get(_ context.Context, customerID string) (domain.Cart, error) {
	return f.get(customerID)
}

func (f *fakeCartService) AddLine(_ context.Context, customerID string, productID uuid.UUID, quantity int) (domain.Cart, error) {
	return f.add(customerID, productID, quantity)
}

func (f *fakeCartService) RemoveLine(_ context.Context, customerID string, productID uuid.UUID) (domain.Cart, error) {
	return f.remove(customerID, productID)
}

func (f *fakeCartService) UpdateQuantity(_ context.Context, customerID string, productID uuid.UUID, quantity int) (domain.Cart, error) {
	return f.update(customerID, productID, quantity)
}

type fakeCouponService struct {
	create func(actor domain.Actor, in service.CreateCouponInput) (domain.Coupon, error)
	update func(actor domain.Actor, id uuid.UUID, in service.UpdateCouponInput) (domain.Coupon, error)
	delete func(actor domain.Actor, id uuid.UUID) error
}

func (f *fakeCouponService) Create(_ context.Context, actor domain.Actor, in service.CreateCouponInput) (domain.Coupon, error) {
	return f.create(actor, in)
}

func (f *fakeCouponService) Update(_ context.Context, actor domain.Actor, id uuid.UUID, in service.UpdateCouponInput) (domain.Coupon, error) {
	return f.update(actor, id, in)
}

func (f *fakeCouponService) Delete(_ context.Context, actor domain.Actor, id uuid.UUID) error {
	return f.delete(actor, id)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

type testServer struct {
	orders  *fakeOrderService
	webhook *fakeWebhookParser
	carts   *fakeCartService
	coupons *fakeCouponService
	pinger  *fakePinger
	handler http.Handler
}

func newTestServer() *testServer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := &testServer{
		orders:  &fakeOrderService{},
		webhook: &fakeWebhookParser{},
		carts:   &fakeCartService{},
		coupons: &fakeCouponService{},
		pinger:  &fakePinger{},
	}
	ts.handler = NewRouter(RouterConfig{
		Orders:         NewOrderHandler(ts.orders, ts.webhook, log),
		Carts:          NewCartHandler(ts.carts, log),
		Coupons:        NewCouponHandler(ts.coupons, log),
		Health:         NewHealthHandler(ts.pinger, "test", log),
		AllowedOrigins: []string{"*"},
		Logger:         log,
	})
	return ts
}

// do sends body as JSON. A nil actor sends no identity headers.
func (ts *testServer) do(t *testing.T, method, path string, body any, actor *domain.Actor) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set(middleware.HeaderUserID, actor.ID)
		req.Header.Set(middleware.HeaderUserRole, string(actor.Role))
		req.Header.Set(middleware.HeaderUserEmail, actor.Email)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var (
	customer = &domain.Actor{ID: "customer-1", Role: domain.RoleUser, Email: "c1@example.com"}
	admin    = &domain.Actor{ID: "admin-1", Role: domain.RoleAdmin, Email: "a1@example.com"}
)

func egp(amount string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(amount), currency.MustParseISO("EGP"))
}

func sampleOrder(status domain.OrderStatus, method domain.PaymentMethod) domain.Order {
	return domain.Order{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		CartID:     uuid.New(),
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), Quantity: 2, Price: egp("50")},
		},
		TotalPrice:    egp("100"),
		Phone:         "01000000000",
		Address:       "Cairo",
		PaymentMethod: method,
		Status:        status,
	}
}

func httptestRequestWithHeader(method, path, body, key, value string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(key, value)
	return req
}

func serve(ts *testServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}
