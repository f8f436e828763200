package port

import (
	"context"

	"github.com/nikolayk812/checkout-demo/internal/domain"
)

type OutboxRepository interface {
	AddOrderEvent(ctx context.Context, event domain.OrderEvent) error
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error)
	MarkSent(ctx context.Context, ids []int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, messages []domain.OutboxMessage) error
}
