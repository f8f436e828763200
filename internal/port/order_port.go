package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	// GetOrderForUpdate locks the order row until the surrounding transaction ends.
	GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ListOrders(ctx context.Context, customerID string) ([]domain.Order, error)

	MarkPaid(ctx context.Context, orderID uuid.UUID, paidAt time.Time, paymentIntent string) (bool, error)
	MarkCancelled(ctx context.Context, orderID uuid.UUID, customerID string, at time.Time) (bool, error)
	MarkRefunded(ctx context.Context, orderID uuid.UUID, by string, at time.Time) (bool, error)
}
