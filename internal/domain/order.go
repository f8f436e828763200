package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCash, PaymentMethodCard:
		return m, nil
	}
	return "", fmt.Errorf("%w: payment method %q", ErrInvalidInput, s)
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusOnWay     OrderStatus = "on_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusRefunded  OrderStatus = "refunded"
)

func (s OrderStatus) String() string {
	return string(s)
}

// orderTransitions lists every legal status change. cancelled -> refunded is
// additionally restricted to card orders in CanTransition.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled, OrderStatusRejected},
	OrderStatusPlaced:    {OrderStatusCancelled, OrderStatusRejected},
	OrderStatusPaid:      {OrderStatusCancelled, OrderStatusRejected},
	OrderStatusCancelled: {OrderStatusRefunded},
}

func InitialStatus(method PaymentMethod) OrderStatus {
	if method == PaymentMethodCard {
		return OrderStatusPending
	}
	return OrderStatusPlaced
}

func CanTransition(from, to OrderStatus, method PaymentMethod) bool {
	if !slices.Contains(orderTransitions[from], to) {
		return false
	}
	if from == OrderStatusCancelled && to == OrderStatusRefunded {
		return method == PaymentMethodCard
	}
	return true
}

// SourceStatuses returns the statuses an order paid with method may be in to
// move to target. Storage uses it as the expected prior status of a
// conditional update.
func SourceStatuses(to OrderStatus, method PaymentMethod) []OrderStatus {
	var from []OrderStatus
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusPlaced, OrderStatusPaid, OrderStatusCancelled,
	} {
		if CanTransition(s, to, method) {
			from = append(from, s)
		}
	}
	return from
}

func (s OrderStatus) IsTerminal(method PaymentMethod) bool {
	switch s {
	case OrderStatusDelivered, OrderStatusRejected, OrderStatusRefunded:
		return true
	case OrderStatusCancelled:
		return method != PaymentMethodCard
	}
	return false
}

// HoldsStock reports whether stock was decremented for an order in status s.
func (s OrderStatus) HoldsStock() bool {
	return s == OrderStatusPlaced || s == OrderStatusPaid
}

type OrderItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     Money
}

// OrderChanges records when and by whom the order was paid, cancelled or refunded.
type OrderChanges struct {
	PaidAt      *time.Time
	CancelledAt *time.Time
	CancelledBy string
	RefundedAt  *time.Time
	RefundedBy  string
}

type Order struct {
	ID            uuid.UUID
	CustomerID    string
	CartID        uuid.UUID
	CouponID      *uuid.UUID
	Items         []OrderItem
	TotalPrice    Money
	Phone         string
	Address       string
	PaymentMethod PaymentMethod
	Status        OrderStatus
	PaymentIntent string
	Changes       OrderChanges

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o Order) CanTransition(to OrderStatus) error {
	if !CanTransition(o.Status, to, o.PaymentMethod) {
		return fmt.Errorf("%w: order %s cannot move from %s to %s", ErrInvalidState, o.ID, o.Status, to)
	}
	return nil
}

func (o Order) Refundable() bool {
	return o.PaymentMethod == PaymentMethodCard && o.PaymentIntent != ""
}
