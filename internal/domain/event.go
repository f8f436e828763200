package domain

import (
	"time"

	"github.com/google/uuid"
)

const OrderEventsTopic = "orders"

// OrderEvent is published whenever an order changes status.
type OrderEvent struct {
	EventID    uuid.UUID   `json:"event_id"`
	Type       string      `json:"type"`
	OrderID    uuid.UUID   `json:"order_id"`
	CustomerID string      `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Total      string      `json:"total"`
	Currency   string      `json:"currency"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func NewOrderEvent(order Order, at time.Time) OrderEvent {
	return OrderEvent{
		EventID:    uuid.New(),
		Type:       "order." + string(order.Status),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Status:     order.Status,
		Total:      order.TotalPrice.Amount.StringFixed(2),
		Currency:   order.TotalPrice.Currency.String(),
		OccurredAt: at.UTC(),
	}
}

// OutboxMessage is a stored event waiting to be relayed to the broker.
type OutboxMessage struct {
	ID        int64
	EventID   uuid.UUID
	Topic     string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}
