package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
	"github.com/nikolayk812/checkout-demo/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/text/currency"
)

var egp = currency.MustParseISO("EGP")

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_products.up.sql",
			"../migrations/02_carts.up.sql",
			"../migrations/03_coupons.up.sql",
			"../migrations/04_orders.up.sql",
			"../migrations/05_outbox.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

type serviceSuite struct {
	suite.Suite

	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	store     port.Store
	log       *slog.Logger
}

// before all tests in the suite
func (suite *serviceSuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.store = repository.NewStore(suite.pool, domain.OrderEventsTopic)
	suite.log = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// after all tests in the suite
func (suite *serviceSuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *serviceSuite) deleteAll() {
	_, err := suite.pool.Exec(context.Background(),
		"TRUNCATE TABLE outbox, order_items, orders, coupons, cart_items, carts, products CASCADE")
	suite.NoError(err)
}

func (suite *serviceSuite) insertProduct(price string, stock int) domain.Product {
	return suite.insertPricedProduct(price, egp, stock)
}

func (suite *serviceSuite) insertPricedProduct(price string, unit currency.Unit, stock int) domain.Product {
	amount := decimal.RequireFromString(price)

	product := domain.Product{
		ID:       uuid.New(),
		Name:     gofakeit.ProductName(),
		ImageURL: gofakeit.URL(),
		Price:    domain.NewMoney(amount, unit),
		Discount: decimal.Zero,
		SubPrice: domain.NewMoney(amount, unit),
		Stock:    stock,
		Quantity: 0,
	}

	suite.Require().NoError(suite.store.Products().AddProduct(context.Background(), product))

	return product
}

// insertCoupon bypasses creation rules so the coupon is active right away.
func (suite *serviceSuite) insertCoupon(code string, amount int) domain.Coupon {
	from := time.Now().Add(-time.Hour)

	coupon := domain.Coupon{
		ID:        uuid.New(),
		Code:      code,
		CreatedBy: gofakeit.UUID(),
		Amount:    amount,
		FromDate:  from,
		ToDate:    from.Add(24 * time.Hour),
	}

	suite.Require().NoError(suite.store.Coupons().AddCoupon(context.Background(), coupon))

	return coupon
}

func (suite *serviceSuite) stock(productID uuid.UUID) int {
	product, err := suite.store.Products().GetProduct(context.Background(), productID)
	suite.Require().NoError(err)
	return product.Stock
}

func (suite *serviceSuite) outboxTypes(orderID uuid.UUID) []string {
	rows, err := suite.pool.Query(context.Background(),
		"SELECT payload->>'type' FROM outbox WHERE key = $1 ORDER BY id", orderID.String())
	suite.Require().NoError(err)
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		suite.Require().NoError(rows.Scan(&t))
		types = append(types, t)
	}
	suite.Require().NoError(rows.Err())

	return types
}

func randomActor() domain.Actor {
	return domain.Actor{
		ID:    gofakeit.UUID(),
		Role:  domain.RoleUser,
		Email: gofakeit.Email(),
	}
}

type fakeGateway struct {
	mu sync.Mutex

	sessions  []domain.CheckoutSessionRequest
	discounts []int
	refunds   []string
	refundErr error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req domain.CheckoutSessionRequest) (domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessions = append(g.sessions, req)
	id := fmt.Sprintf("cs_test_%d", len(g.sessions))

	return domain.CheckoutSession{ID: id, URL: "https://checkout.example.com/" + id}, nil
}

func (g *fakeGateway) CreatePercentDiscount(_ context.Context, percentOff int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.discounts = append(g.discounts, percentOff)

	return fmt.Sprintf("coupon_%d", len(g.discounts)), nil
}

func (g *fakeGateway) Refund(_ context.Context, paymentIntentID, reason string) (domain.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.refundErr != nil {
		return domain.Refund{}, g.refundErr
	}
	g.refunds = append(g.refunds, paymentIntentID+":"+reason)

	return domain.Refund{ID: "re_" + paymentIntentID, Status: "succeeded"}, nil
}

type memoryGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{keys: make(map[string]struct{})}
}

func (g *memoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = struct{}{}

	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.keys, key)

	return nil
}

type countingRecorder struct {
	mu         sync.Mutex
	statuses   map[domain.OrderStatus]int
	duplicates int
	failures   []string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{statuses: make(map[domain.OrderStatus]int)}
}

func (r *countingRecorder) OrderStatusChanged(status domain.OrderStatus, _ domain.PaymentMethod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[status]++
}

func (r *countingRecorder) WebhookDuplicate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duplicates++
}

func (r *countingRecorder) GatewayFailure(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, operation)
}
