package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
	"golang.org/x/text/currency"
)

const orderIDMetadataKey = "orderId"

type CreateOrderInput struct {
	CustomerID    string
	Phone         string
	Address       string
	PaymentMethod domain.PaymentMethod
	CouponCode    string
}

const providerActorID = "payment-provider"

type WebhookResult struct {
	OrderID   uuid.UUID
	Duplicate bool
	// Refunded is set when the payment arrived after the order was cancelled
	// and was given back.
	Refunded bool
}

type CheckoutOption func(*CheckoutService)

// WithWebhookGuard enables the fast-path duplicate check for webhook deliveries.
func WithWebhookGuard(guard port.WebhookGuard) CheckoutOption {
	return func(s *CheckoutService) {
		s.guard = guard
	}
}

func WithRecorder(recorder Recorder) CheckoutOption {
	return func(s *CheckoutService) {
		s.recorder = recorder
	}
}

func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

// CheckoutService turns carts into orders and drives them through payment,
// confirmation and cancellation. Every storage step of one operation runs in a
// single transaction.
type CheckoutService struct {
	store    port.Store
	gateway  port.PaymentGateway
	currency currency.Unit
	guard    port.WebhookGuard
	recorder Recorder
	log      *slog.Logger
	now      func() time.Time
}

func NewCheckoutService(store port.Store, gateway port.PaymentGateway, checkoutCurrency currency.Unit, log *slog.Logger, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		store:    store,
		gateway:  gateway,
		currency: checkoutCurrency,
		recorder: nopRecorder{},
		log:      log,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *CheckoutService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if err := validateCreateOrder(in); err != nil {
		return domain.Order{}, err
	}

	now := s.now()

	var order domain.Order
	err := s.store.InTx(ctx, func(repos port.Repositories) error {
		cart, err := repos.Carts().GetCart(ctx, in.CustomerID)
		if err != nil {
			return fmt.Errorf("carts.GetCart: %w", err)
		}
		if cart.IsEmpty() {
			return fmt.Errorf("%w: cart is empty", domain.ErrNotFound)
		}
		if err := s.checkCartCurrency(cart); err != nil {
			return err
		}

		order = domain.Order{
			ID:            uuid.New(),
			CustomerID:    in.CustomerID,
			CartID:        cart.ID,
			Items:         snapshotItems(cart),
			TotalPrice:    cart.SubTotal,
			Phone:         strings.TrimSpace(in.Phone),
			Address:       strings.TrimSpace(in.Address),
			PaymentMethod: in.PaymentMethod,
			Status:        domain.InitialStatus(in.PaymentMethod),
		}

		coupons := NewCouponLedger(repos.Coupons())

		var coupon domain.Coupon
		if in.CouponCode != "" {
			if coupon, err = coupons.ValidateActive(ctx, in.CouponCode, now); err != nil {
				return err
			}
			// card orders redeem on confirmation
			if in.PaymentMethod == domain.PaymentMethodCash {
				if err := coupons.AssertUnusedBy(coupon, in.CustomerID); err != nil {
					return err
				}
			}
			order.CouponID = &coupon.ID
		}

		if err := repos.Orders().CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("orders.CreateOrder: %w", err)
		}

		if in.PaymentMethod == domain.PaymentMethodCash {
			if order.CouponID != nil {
				if err := coupons.Redeem(ctx, coupon.ID, in.CustomerID); err != nil {
					return err
				}
			}

			if err := NewStockLedger(repos.Products()).ReserveAndDecrement(ctx, order.Items); err != nil {
				return err
			}

			if err := repos.Carts().Clear(ctx, cart.ID); err != nil {
				return fmt.Errorf("carts.Clear: %w", err)
			}
		}

		if err := repos.Outbox().AddOrderEvent(ctx, domain.NewOrderEvent(order, now)); err != nil {
			return fmt.Errorf("outbox.AddOrderEvent: %w", err)
		}

		order, err = repos.Orders().GetOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("orders.GetOrder: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.recorder.OrderStatusChanged(order.Status, order.PaymentMethod)
	s.log.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"status", order.Status,
		"payment_method", order.PaymentMethod,
		"total", order.TotalPrice.Amount.String())

	return order, nil
}

// CreatePaymentSession opens a hosted checkout session for a pending card
// order and returns its URL.
func (s *CheckoutService) CreatePaymentSession(ctx context.Context, orderID uuid.UUID, actor domain.Actor) (string, error) {
	order, err := s.store.Orders().GetOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("orders.GetOrder: %w", err)
	}
	if order.CustomerID != actor.ID || order.Status != domain.OrderStatusPending || len(order.Items) == 0 {
		return "", fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
	}

	var discounts []string
	if order.CouponID != nil {
		coupon, err := s.store.Coupons().GetCoupon(ctx, *order.CouponID)
		if err != nil {
			return "", fmt.Errorf("coupons.GetCoupon: %w", err)
		}
		if err := NewCouponLedger(s.store.Coupons()).AssertUnusedBy(coupon, actor.ID); err != nil {
			return "", err
		}

		discountID, err := s.gateway.CreatePercentDiscount(ctx, coupon.Amount)
		if err != nil {
			s.recorder.GatewayFailure("discount")
			return "", fmt.Errorf("gateway.CreatePercentDiscount: %w", err)
		}
		discounts = append(discounts, discountID)
	}

	lineItems, err := s.sessionLineItems(ctx, order.Items)
	if err != nil {
		return "", err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, domain.CheckoutSessionRequest{
		CustomerEmail: actor.Email,
		Metadata:      map[string]string{orderIDMetadataKey: order.ID.String()},
		LineItems:     lineItems,
		DiscountIDs:   discounts,
	})
	if err != nil {
		s.recorder.GatewayFailure("checkout_session")
		return "", fmt.Errorf("gateway.CreateCheckoutSession: %w", err)
	}

	s.log.InfoContext(ctx, "payment session created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"session_id", session.ID)

	return session.URL, nil
}

// sessionLineItems prices each snapshot line at the product's current sub price.
func (s *CheckoutService) sessionLineItems(ctx context.Context, items []domain.OrderItem) ([]domain.CheckoutLineItem, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.store.Products().GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("products.GetProducts: %w", err)
	}

	lineItems := make([]domain.CheckoutLineItem, 0, len(items))
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, item.ProductID)
		}
		if product.SubPrice.Currency != s.currency {
			return nil, fmt.Errorf("%w: product %s is priced in %s, checkout currency is %s",
				domain.ErrInvalidInput, product.ID, product.SubPrice.Currency, s.currency)
		}

		lineItems = append(lineItems, domain.CheckoutLineItem{
			Name:       product.Name,
			ImageURL:   product.ImageURL,
			UnitAmount: product.SubPrice.MinorUnits(),
			Currency:   strings.ToLower(s.currency.String()),
			Quantity:   int64(item.Quantity),
		})
	}

	return lineItems, nil
}

// HandlePaymentConfirmed marks the order paid, redeems its coupon and takes
// the stock. A delivery for an order that is already paid is a no-op reported
// as a duplicate.
func (s *CheckoutService) HandlePaymentConfirmed(ctx context.Context, confirmation domain.PaymentConfirmation) (WebhookResult, error) {
	orderID, err := uuid.Parse(confirmation.OrderID)
	if err != nil {
		return WebhookResult{}, fmt.Errorf("%w: order %q", domain.ErrNotFound, confirmation.OrderID)
	}

	result := WebhookResult{OrderID: orderID}

	key := fmt.Sprintf("webhook:%s:%s", orderID, domain.OrderStatusPaid)
	if s.guard != nil {
		acquired, err := s.guard.Acquire(ctx, key)
		switch {
		case err != nil:
			// the conditional status update still protects us
			s.log.WarnContext(ctx, "webhook guard unavailable", "order_id", orderID, "error", err)
		case !acquired:
			s.recorder.WebhookDuplicate()
			result.Duplicate = true
			return result, nil
		}
	}

	now := s.now()

	var (
		order domain.Order
		late  bool
	)
	err = s.store.InTx(ctx, func(repos port.Repositories) error {
		var err error
		order, err = repos.Orders().GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrderForUpdate: %w", err)
		}

		if order.Changes.PaidAt != nil {
			result.Duplicate = true
			return nil
		}
		if order.Status != domain.OrderStatusPending {
			late = true
			return nil
		}

		updated, err := repos.Orders().MarkPaid(ctx, orderID, now, confirmation.PaymentIntent)
		if err != nil {
			return fmt.Errorf("orders.MarkPaid: %w", err)
		}
		if !updated {
			result.Duplicate = true
			return nil
		}

		if order.CouponID != nil {
			coupons := NewCouponLedger(repos.Coupons())

			coupon, err := repos.Coupons().GetCoupon(ctx, *order.CouponID)
			if err != nil {
				return fmt.Errorf("coupons.GetCoupon: %w", err)
			}
			if err := coupons.AssertUnusedBy(coupon, order.CustomerID); err != nil {
				return err
			}
			if err := coupons.Redeem(ctx, coupon.ID, order.CustomerID); err != nil {
				return err
			}
		}

		if err := NewStockLedger(repos.Products()).ReserveAndDecrement(ctx, order.Items); err != nil {
			return err
		}

		cart, err := repos.Carts().GetCartByID(ctx, order.CartID)
		if err != nil {
			return fmt.Errorf("carts.GetCartByID: %w", err)
		}
		if err := repos.Carts().Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("carts.Clear: %w", err)
		}

		order.Status = domain.OrderStatusPaid
		if err := repos.Outbox().AddOrderEvent(ctx, domain.NewOrderEvent(order, now)); err != nil {
			return fmt.Errorf("outbox.AddOrderEvent: %w", err)
		}

		return nil
	})
	if err == nil && late {
		result, err = s.handleLatePayment(ctx, order, confirmation)
	}
	if err != nil {
		s.releaseGuard(ctx, key)
		return WebhookResult{}, err
	}

	if result.Refunded {
		return result, nil
	}
	if result.Duplicate {
		s.recorder.WebhookDuplicate()
		s.log.InfoContext(ctx, "duplicate payment confirmation ignored", "order_id", orderID, "event_id", confirmation.EventID)
		return result, nil
	}

	s.recorder.OrderStatusChanged(domain.OrderStatusPaid, order.PaymentMethod)
	s.log.InfoContext(ctx, "order paid",
		"order_id", orderID,
		"customer_id", order.CustomerID,
		"payment_intent", confirmation.PaymentIntent,
		"event_id", confirmation.EventID)

	return result, nil
}

// handleLatePayment deals with a confirmation for an order that left pending
// without being paid. A cancelled card order has its payment refunded; any
// other order only acknowledges the event.
func (s *CheckoutService) handleLatePayment(ctx context.Context, order domain.Order, confirmation domain.PaymentConfirmation) (WebhookResult, error) {
	result := WebhookResult{OrderID: order.ID}

	// only a card order can be cancelled without being terminal
	refundable := order.Status == domain.OrderStatusCancelled && !order.Status.IsTerminal(order.PaymentMethod)
	if !refundable || confirmation.PaymentIntent == "" {
		s.recorder.WebhookDuplicate()
		s.log.ErrorContext(ctx, "payment confirmed for an order that cannot be paid",
			"order_id", order.ID,
			"status", order.Status,
			"payment_method", order.PaymentMethod,
			"payment_intent", confirmation.PaymentIntent,
			"event_id", confirmation.EventID)
		result.Duplicate = true
		return result, nil
	}

	s.log.WarnContext(ctx, "payment confirmed after cancellation, refunding",
		"order_id", order.ID,
		"payment_intent", confirmation.PaymentIntent,
		"event_id", confirmation.EventID)

	paid := order
	paid.PaymentIntent = confirmation.PaymentIntent
	if err := s.refund(ctx, paid, domain.Actor{ID: providerActorID}); err != nil {
		return WebhookResult{}, err
	}

	result.Refunded = true
	return result, nil
}

func (s *CheckoutService) releaseGuard(ctx context.Context, key string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Release(ctx, key); err != nil {
		s.log.WarnContext(ctx, "webhook guard release failed", "key", key, "error", err)
	}
}

// CancelOrder cancels the customer's order and gives back any stock it took.
// A paid card order is then refunded; when the refund fails the order stays
// cancelled and the gateway error is returned with it.
func (s *CheckoutService) CancelOrder(ctx context.Context, orderID uuid.UUID, actor domain.Actor) (domain.Order, error) {
	now := s.now()

	var prior domain.Order
	err := s.store.InTx(ctx, func(repos port.Repositories) error {
		var err error
		prior, err = repos.Orders().GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return fmt.Errorf("orders.GetOrderForUpdate: %w", err)
		}
		if prior.CustomerID != actor.ID || !domain.CanTransition(prior.Status, domain.OrderStatusCancelled, prior.PaymentMethod) {
			return fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
		}

		updated, err := repos.Orders().MarkCancelled(ctx, orderID, actor.ID, now)
		if err != nil {
			return fmt.Errorf("orders.MarkCancelled: %w", err)
		}
		if !updated {
			return fmt.Errorf("%w: order %s", domain.ErrNotFound, orderID)
		}

		if prior.Status.HoldsStock() {
			if err := NewStockLedger(repos.Products()).Restock(ctx, prior.Items); err != nil {
				return err
			}
		}

		cancelled := prior
		cancelled.Status = domain.OrderStatusCancelled
		if err := repos.Outbox().AddOrderEvent(ctx, domain.NewOrderEvent(cancelled, now)); err != nil {
			return fmt.Errorf("outbox.AddOrderEvent: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.recorder.OrderStatusChanged(domain.OrderStatusCancelled, prior.PaymentMethod)
	s.log.InfoContext(ctx, "order cancelled",
		"order_id", orderID,
		"customer_id", actor.ID,
		"previous_status", prior.Status)

	if prior.Status == domain.OrderStatusPaid && prior.Refundable() {
		if err := s.refund(ctx, prior, actor); err != nil {
			order, getErr := s.store.Orders().GetOrder(ctx, orderID)
			return order, errors.Join(err, getErr)
		}
	}

	order, err := s.store.Orders().GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return order, nil
}

func (s *CheckoutService) refund(ctx context.Context, order domain.Order, actor domain.Actor) error {
	refund, err := s.gateway.Refund(ctx, order.PaymentIntent, domain.RefundReasonRequestedByCustomer)
	if err != nil {
		s.recorder.GatewayFailure("refund")
		s.log.ErrorContext(ctx, "refund failed, order stays cancelled",
			"order_id", order.ID,
			"payment_intent", order.PaymentIntent,
			"error", err)
		return fmt.Errorf("gateway.Refund: %w", err)
	}

	s.log.InfoContext(ctx, "refund issued",
		"order_id", order.ID,
		"payment_intent", order.PaymentIntent,
		"refund_id", refund.ID,
		"refund_status", refund.Status)

	now := s.now()

	err = s.store.InTx(ctx, func(repos port.Repositories) error {
		updated, err := repos.Orders().MarkRefunded(ctx, order.ID, actor.ID, now)
		if err != nil {
			return fmt.Errorf("orders.MarkRefunded: %w", err)
		}
		if !updated {
			return fmt.Errorf("%w: order %s is not cancelled", domain.ErrInvalidState, order.ID)
		}

		refunded := order
		refunded.Status = domain.OrderStatusRefunded
		if err := repos.Outbox().AddOrderEvent(ctx, domain.NewOrderEvent(refunded, now)); err != nil {
			return fmt.Errorf("outbox.AddOrderEvent: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.recorder.OrderStatusChanged(domain.OrderStatusRefunded, order.PaymentMethod)
	s.log.InfoContext(ctx, "order refunded",
		"order_id", order.ID,
		"refunded_by", actor.ID,
		"refund_id", refund.ID)

	return nil
}

func (s *CheckoutService) ListOrders(ctx context.Context, customerID string) ([]domain.Order, error) {
	orders, err := s.store.Orders().ListOrders(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrders: %w", err)
	}
	return orders, nil
}

// checkCartCurrency rejects carts whose sub total or lines are not in the
// checkout currency.
func (s *CheckoutService) checkCartCurrency(cart domain.Cart) error {
	if cart.SubTotal.Currency != s.currency {
		return fmt.Errorf("%w: cart %s is in %s, checkout currency is %s",
			domain.ErrInvalidInput, cart.ID, cart.SubTotal.Currency, s.currency)
	}
	for _, item := range cart.Items {
		if item.Price.Currency != s.currency {
			return fmt.Errorf("%w: product %s is priced in %s, checkout currency is %s",
				domain.ErrInvalidInput, item.ProductID, item.Price.Currency, s.currency)
		}
	}
	return nil
}

func validateCreateOrder(in CreateOrderInput) error {
	if in.CustomerID == "" {
		return fmt.Errorf("%w: customer id is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Phone) == "" {
		return fmt.Errorf("%w: phone is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address is required", domain.ErrInvalidInput)
	}
	if _, err := domain.ParsePaymentMethod(string(in.PaymentMethod)); err != nil {
		return err
	}
	return nil
}

func snapshotItems(cart domain.Cart) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return items
}
