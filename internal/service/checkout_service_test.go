package service_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/service"
	"github.com/nikolayk812/checkout-demo/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/currency"
)

type checkoutServiceSuite struct {
	serviceSuite

	carts *service.CartService
}

func TestCheckoutServiceSuite(t *testing.T) {
	suite.Run(t, new(checkoutServiceSuite))
}

func (suite *checkoutServiceSuite) SetupSuite() {
	suite.serviceSuite.SetupSuite()

	suite.carts = service.NewCartService(suite.store, egp, suite.log)
}

func (suite *checkoutServiceSuite) newCheckout(gateway *fakeGateway, opts ...service.CheckoutOption) *service.CheckoutService {
	return service.NewCheckoutService(suite.store, gateway, egp, suite.log, opts...)
}

// fillCart puts productA x2 @ 50 into a fresh customer's cart.
func (suite *checkoutServiceSuite) fillCart() (domain.Actor, domain.Product) {
	actor := randomActor()
	product := suite.insertProduct("50", 10)

	cart, err := suite.carts.AddLine(suite.T().Context(), actor.ID, product.ID, 2)
	suite.Require().NoError(err)
	suite.Require().Equal("100.00", cart.SubTotal.Amount.StringFixed(2))

	return actor, product
}

func orderInput(actor domain.Actor, method domain.PaymentMethod, couponCode string) service.CreateOrderInput {
	return service.CreateOrderInput{
		CustomerID:    actor.ID,
		Phone:         "+201000000000",
		Address:       "1 Nile St, Cairo",
		PaymentMethod: method,
		CouponCode:    couponCode,
	}
}

func confirmation(order domain.Order, intent string) domain.PaymentConfirmation {
	return domain.PaymentConfirmation{
		EventID:       "evt_" + intent,
		EventType:     "checkout.session.completed",
		OrderID:       order.ID.String(),
		PaymentIntent: intent,
	}
}

func (suite *checkoutServiceSuite) TestCreateOrder_Cash() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	recorder := newCountingRecorder()
	checkout := suite.newCheckout(&fakeGateway{}, service.WithRecorder(recorder))
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, ""))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPlaced, order.Status)
	assert.Equal(t, "100.00", order.TotalPrice.Amount.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	assert.Equal(t, 8, suite.stock(product.ID))

	cart, err := suite.carts.Get(ctx, actor.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	assert.Equal(t, []string{"order.placed"}, suite.outboxTypes(order.ID))
	assert.Equal(t, 1, recorder.statuses[domain.OrderStatusPlaced])
}

func (suite *checkoutServiceSuite) TestCreateOrder_Errors() {
	defer suite.deleteAll()

	checkout := suite.newCheckout(&fakeGateway{})
	suite.insertCoupon("ACTIVE", 10)

	tests := []struct {
		name      string
		fill      bool
		method    domain.PaymentMethod
		coupon    string
		phone     string
		wantErrIs error
	}{
		{
			name:      "create order without cart: not found",
			method:    domain.PaymentMethodCash,
			wantErrIs: domain.ErrNotFound,
		},
		{
			name:      "create order with missing coupon: not found",
			fill:      true,
			method:    domain.PaymentMethodCard,
			coupon:    "NOPE",
			wantErrIs: domain.ErrNotFound,
		},
		{
			name:      "create order with unknown payment method: invalid input",
			fill:      true,
			method:    domain.PaymentMethod("cheque"),
			wantErrIs: domain.ErrInvalidInput,
		},
		{
			name:      "create order without phone: invalid input",
			fill:      true,
			method:    domain.PaymentMethodCash,
			phone:     " ",
			wantErrIs: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			actor := randomActor()
			if tt.fill {
				actor, _ = suite.fillCart()
			}

			in := orderInput(actor, tt.method, tt.coupon)
			if tt.phone != "" {
				in.Phone = tt.phone
			}

			_, err := checkout.CreateOrder(ctx, in)
			require.ErrorIs(t, err, tt.wantErrIs)

			orders, err := checkout.ListOrders(ctx, actor.ID)
			require.NoError(t, err)
			assert.Empty(t, orders)
		})
	}
}

func (suite *checkoutServiceSuite) TestCreateOrder_EmptyCart() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})
	actor, _ := suite.fillCart()
	require.NoError(t, suite.carts.Clear(ctx, actor.ID))

	_, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, ""))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *checkoutServiceSuite) TestCreateOrder_CouponReuse() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})
	coupon := suite.insertCoupon("SAVE10", 10)
	actor, product := suite.fillCart()

	_, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, "SAVE10"))
	require.NoError(t, err)

	stored, err := suite.store.Coupons().GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{actor.ID}, stored.UsedBy)

	_, err = suite.carts.AddLine(ctx, actor.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, "SAVE10"))
	require.ErrorIs(t, err, domain.ErrConflict)

	orders, err := checkout.ListOrders(ctx, actor.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1, "the rejected checkout must not leave an order behind")
	assert.Equal(t, 8, suite.stock(product.ID))
}

func (suite *checkoutServiceSuite) TestCreateOrder_InactiveCoupon() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})
	coupon := suite.insertCoupon("LATER", 10)
	_, err := suite.pool.Exec(ctx,
		"UPDATE coupons SET from_date = now() + interval '1 day', to_date = now() + interval '2 days' WHERE id = $1",
		coupon.ID)
	require.NoError(t, err)

	actor, _ := suite.fillCart()

	_, err = checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, "LATER"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func (suite *checkoutServiceSuite) TestCreateOrder_PartialStockRollsBack() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})
	actor, first := suite.fillCart()

	second := suite.insertProduct("5", 3)
	_, err := suite.carts.AddLine(ctx, actor.ID, second.ID, 3)
	require.NoError(t, err)

	// someone else buys the last unit after it was put into the cart
	require.NoError(t, suite.store.Products().DecrementStock(ctx, second.ID, 1))

	_, err = checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, ""))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, suite.stock(first.ID), "first line must not stay decremented")
	assert.Equal(t, 2, suite.stock(second.ID))

	orders, err := checkout.ListOrders(ctx, actor.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	cart, err := suite.carts.Get(ctx, actor.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func (suite *checkoutServiceSuite) TestCreateOrder_ForeignCurrencyLine() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})
	actor, local := suite.fillCart()

	// written past CartService, which refuses foreign prices
	foreign := suite.insertPricedProduct("10", currency.USD, 5)
	_, err := suite.store.Carts().AddItem(ctx, actor.ID, domain.CartItem{
		ProductID: foreign.ID,
		Quantity:  1,
		Price:     foreign.SubPrice,
	})
	require.NoError(t, err)

	for _, method := range []domain.PaymentMethod{domain.PaymentMethodCash, domain.PaymentMethodCard} {
		_, err = checkout.CreateOrder(ctx, orderInput(actor, method, ""))
		require.ErrorIs(t, err, domain.ErrInvalidInput, method)
	}

	orders, err := checkout.ListOrders(ctx, actor.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 10, suite.stock(local.ID))
	assert.Equal(t, 5, suite.stock(foreign.ID))
}

func (suite *checkoutServiceSuite) TestCardFlow() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{}
	recorder := newCountingRecorder()
	checkout := suite.newCheckout(gateway, service.WithRecorder(recorder))

	coupon := suite.insertCoupon("SAVE10", 10)
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, "SAVE10"))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, coupon.ID, *order.CouponID)

	// nothing is taken before payment
	assert.Equal(t, 10, suite.stock(product.ID))
	stored, err := suite.store.Coupons().GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.UsedBy)

	url, err := checkout.CreatePaymentSession(ctx, order.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_test_1", url)

	require.Len(t, gateway.discounts, 1)
	assert.Equal(t, 10, gateway.discounts[0])

	require.Len(t, gateway.sessions, 1)
	session := gateway.sessions[0]
	assert.Equal(t, actor.Email, session.CustomerEmail)
	assert.Equal(t, order.ID.String(), session.Metadata["orderId"])
	assert.Equal(t, []string{"coupon_1"}, session.DiscountIDs)
	require.Len(t, session.LineItems, 1)
	assert.Equal(t, domain.CheckoutLineItem{
		Name:       product.Name,
		ImageURL:   product.ImageURL,
		UnitAmount: 5000,
		Currency:   "egp",
		Quantity:   2,
	}, session.LineItems[0])

	result, err := checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_1"))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)

	paid, err := suite.store.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, paid.Status)
	assert.Equal(t, "pi_1", paid.PaymentIntent)
	assert.NotNil(t, paid.Changes.PaidAt)

	stored, err = suite.store.Coupons().GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{actor.ID}, stored.UsedBy)
	assert.Equal(t, 8, suite.stock(product.ID))

	cart, err := suite.carts.Get(ctx, actor.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// redelivery
	result, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_1"))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)

	assert.Equal(t, 8, suite.stock(product.ID))
	stored, err = suite.store.Coupons().GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Len(t, stored.UsedBy, 1)

	assert.Equal(t, []string{"order.pending", "order.paid"}, suite.outboxTypes(order.ID))
	assert.Equal(t, 1, recorder.duplicates)

	// the coupon cannot be reused for a second order
	_, err = suite.carts.AddLine(ctx, actor.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, "SAVE10"))
	require.ErrorIs(t, err, domain.ErrConflict)
}

func (suite *checkoutServiceSuite) TestHandlePaymentConfirmed_ConcurrentDuplicates() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})
	coupon := suite.insertCoupon("RACE", 5)
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, "RACE"))
	require.NoError(t, err)

	const deliveries = 6

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firsts   int
		failures []error
	)

	for range deliveries {
		wg.Add(1)
		go func() {
			defer wg.Done()

			result, err := checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_race"))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			if !result.Duplicate {
				firsts++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, failures)
	assert.Equal(t, 1, firsts)
	assert.Equal(t, 8, suite.stock(product.ID))

	stored, err := suite.store.Coupons().GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{actor.ID}, stored.UsedBy)
}

func (suite *checkoutServiceSuite) TestHandlePaymentConfirmed_Guard() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	guard := newMemoryGuard()
	checkout := suite.newCheckout(&fakeGateway{}, service.WithWebhookGuard(guard))
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)

	// another delivery is in flight
	acquired, err := guard.Acquire(ctx, fmt.Sprintf("webhook:%s:paid", order.ID))
	require.NoError(t, err)
	require.True(t, acquired)

	result, err := checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_guard"))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, 10, suite.stock(product.ID))

	require.NoError(t, guard.Release(ctx, fmt.Sprintf("webhook:%s:paid", order.ID)))

	result, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_guard"))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Equal(t, 8, suite.stock(product.ID))
}

func (suite *checkoutServiceSuite) TestHandlePaymentConfirmed_FailureReleasesGuard() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	guard := newMemoryGuard()
	checkout := suite.newCheckout(&fakeGateway{}, service.WithWebhookGuard(guard))
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)

	require.NoError(t, suite.store.Products().DecrementStock(ctx, product.ID, 9))

	_, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_short"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	pending, err := suite.store.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, pending.Status, "paid transition must roll back")

	require.NoError(t, suite.store.Products().IncrementStock(ctx, product.ID, 9))

	result, err := checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_short"))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
}

func (suite *checkoutServiceSuite) TestHandlePaymentConfirmed_UnknownOrder() {
	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})

	_, err := checkout.HandlePaymentConfirmed(ctx, domain.PaymentConfirmation{OrderID: uuid.NewString()})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = checkout.HandlePaymentConfirmed(ctx, domain.PaymentConfirmation{OrderID: "not-a-uuid"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *checkoutServiceSuite) TestHandlePaymentConfirmed_AfterCancelRefunds() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{}
	recorder := newCountingRecorder()
	checkout := suite.newCheckout(gateway, service.WithRecorder(recorder))
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)
	_, err = checkout.CancelOrder(ctx, order.ID, actor)
	require.NoError(t, err)

	result, err := checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_late"))
	require.NoError(t, err)
	assert.True(t, result.Refunded)
	assert.False(t, result.Duplicate)
	assert.Equal(t, order.ID, result.OrderID)
	assert.Equal(t, []string{"pi_late:requested_by_customer"}, gateway.refunds)

	stored, err := suite.store.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, stored.Status)
	assert.Equal(t, "payment-provider", stored.Changes.RefundedBy)
	assert.NotNil(t, stored.Changes.RefundedAt)
	assert.Nil(t, stored.Changes.PaidAt)
	assert.Equal(t, 10, suite.stock(product.ID))
	assert.Equal(t, 1, recorder.statuses[domain.OrderStatusRefunded])

	// redelivery after the refund is only acknowledged
	result, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_late"))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.False(t, result.Refunded)
	assert.Len(t, gateway.refunds, 1)

	assert.Equal(t, []string{"order.pending", "order.cancelled", "order.refunded"}, suite.outboxTypes(order.ID))
}

func (suite *checkoutServiceSuite) TestHandlePaymentConfirmed_AfterCancelRefundFails() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{refundErr: fmt.Errorf("%w: connection reset", domain.ErrGateway)}
	recorder := newCountingRecorder()
	guard := newMemoryGuard()
	checkout := suite.newCheckout(gateway, service.WithRecorder(recorder), service.WithWebhookGuard(guard))
	actor, _ := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)
	_, err = checkout.CancelOrder(ctx, order.ID, actor)
	require.NoError(t, err)

	_, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_late"))
	require.ErrorIs(t, err, domain.ErrGateway)
	assert.Equal(t, []string{"refund"}, recorder.failures)

	stored, err := suite.store.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
	assert.Nil(t, stored.Changes.RefundedAt)

	// the guard is released so the provider's retry refunds the payment
	gateway.refundErr = nil
	result, err := checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_late"))
	require.NoError(t, err)
	assert.True(t, result.Refunded)
	assert.Equal(t, []string{"pi_late:requested_by_customer"}, gateway.refunds)
}

func (suite *checkoutServiceSuite) TestHandlePaymentConfirmed_CashOrderAcknowledged() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{}
	recorder := newCountingRecorder()
	checkout := suite.newCheckout(gateway, service.WithRecorder(recorder))
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, ""))
	require.NoError(t, err)

	result, err := checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_cash"))
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.False(t, result.Refunded)
	assert.Empty(t, gateway.refunds)
	assert.Equal(t, 1, recorder.duplicates)

	stored, err := suite.store.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPlaced, stored.Status)
	assert.Equal(t, 8, suite.stock(product.ID))
}

func (suite *checkoutServiceSuite) TestCreatePaymentSession_Errors() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{}
	checkout := suite.newCheckout(gateway)
	coupon := suite.insertCoupon("ONCE", 10)

	cashActor, _ := suite.fillCart()
	cashOrder, err := checkout.CreateOrder(ctx, orderInput(cashActor, domain.PaymentMethodCash, ""))
	require.NoError(t, err)

	_, err = checkout.CreatePaymentSession(ctx, cashOrder.ID, cashActor)
	require.ErrorIs(t, err, domain.ErrNotFound, "placed orders have nothing to pay online")

	actor, _ := suite.fillCart()
	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, "ONCE"))
	require.NoError(t, err)

	_, err = checkout.CreatePaymentSession(ctx, order.ID, randomActor())
	require.ErrorIs(t, err, domain.ErrNotFound, "orders of other customers are hidden")

	require.NoError(t, suite.store.Coupons().Redeem(ctx, coupon.ID, actor.ID))

	_, err = checkout.CreatePaymentSession(ctx, order.ID, actor)
	require.ErrorIs(t, err, domain.ErrConflict)

	assert.Empty(t, gateway.sessions)
}

func (suite *checkoutServiceSuite) TestCancelOrder_Cash() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{}
	checkout := suite.newCheckout(gateway)
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, ""))
	require.NoError(t, err)
	require.Equal(t, 8, suite.stock(product.ID))

	_, err = checkout.CancelOrder(ctx, order.ID, randomActor())
	require.ErrorIs(t, err, domain.ErrNotFound)

	cancelled, err := checkout.CancelOrder(ctx, order.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, actor.ID, cancelled.Changes.CancelledBy)
	assert.NotNil(t, cancelled.Changes.CancelledAt)
	assert.Equal(t, 10, suite.stock(product.ID))
	assert.Empty(t, gateway.refunds)

	_, err = checkout.CancelOrder(ctx, order.ID, actor)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 10, suite.stock(product.ID), "stock is given back once")
}

func (suite *checkoutServiceSuite) TestCancelOrder_PendingCard() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{}
	checkout := suite.newCheckout(gateway)
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)

	cancelled, err := checkout.CancelOrder(ctx, order.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, suite.stock(product.ID))
	assert.Empty(t, gateway.refunds)
}

func (suite *checkoutServiceSuite) TestCancelOrder_PaidCardRefunds() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{}
	checkout := suite.newCheckout(gateway)
	actor, product := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)
	_, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_refund"))
	require.NoError(t, err)
	require.Equal(t, 8, suite.stock(product.ID))

	refunded, err := checkout.CancelOrder(ctx, order.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusRefunded, refunded.Status)
	assert.Equal(t, actor.ID, refunded.Changes.RefundedBy)
	assert.NotNil(t, refunded.Changes.RefundedAt)
	assert.Equal(t, []string{"pi_refund:requested_by_customer"}, gateway.refunds)
	assert.Equal(t, 10, suite.stock(product.ID))

	assert.Equal(t, []string{"order.pending", "order.paid", "order.cancelled", "order.refunded"}, suite.outboxTypes(order.ID))
}

func (suite *checkoutServiceSuite) TestCancelOrder_LogsRefundID() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	var buf bytes.Buffer
	checkout := service.NewCheckoutService(suite.store, &fakeGateway{}, egp, logger.NewWithWriter(&buf, "info"))
	actor, _ := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)
	_, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_logged"))
	require.NoError(t, err)
	_, err = checkout.CancelOrder(ctx, order.ID, actor)
	require.NoError(t, err)

	var messages []string
	var issued map[string]any
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		msg, _ := entry["msg"].(string)
		messages = append(messages, msg)
		if msg == "refund issued" {
			issued = entry
		}
	}

	require.NotNil(t, issued)
	assert.Equal(t, "re_pi_logged", issued["refund_id"])
	assert.Equal(t, "pi_logged", issued["payment_intent"])
	assert.Less(t, slices.Index(messages, "refund issued"), slices.Index(messages, "order refunded"))
}

func (suite *checkoutServiceSuite) TestCancelOrder_RefundFailureStaysCancelled() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	gateway := &fakeGateway{refundErr: fmt.Errorf("%w: connection reset", domain.ErrGateway)}
	recorder := newCountingRecorder()
	checkout := suite.newCheckout(gateway, service.WithRecorder(recorder))
	actor, _ := suite.fillCart()

	order, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)
	_, err = checkout.HandlePaymentConfirmed(ctx, confirmation(order, "pi_fail"))
	require.NoError(t, err)

	cancelled, err := checkout.CancelOrder(ctx, order.ID, actor)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGateway))
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	stored, err := suite.store.Orders().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
	assert.Nil(t, stored.Changes.RefundedAt)
	assert.Equal(t, []string{"refund"}, recorder.failures)
}

func (suite *checkoutServiceSuite) TestListOrders() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	checkout := suite.newCheckout(&fakeGateway{})
	actor, product := suite.fillCart()

	first, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCash, ""))
	require.NoError(t, err)

	_, err = suite.carts.AddLine(ctx, actor.ID, product.ID, 1)
	require.NoError(t, err)
	second, err := checkout.CreateOrder(ctx, orderInput(actor, domain.PaymentMethodCard, ""))
	require.NoError(t, err)

	orders, err := checkout.ListOrders(ctx, actor.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)
}
