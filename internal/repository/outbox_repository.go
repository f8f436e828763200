package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-demo/internal/db"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
)

type outboxRepository struct {
	q     *db.Queries
	pool  *pgxpool.Pool
	topic string
}

func NewOutbox(pool *pgxpool.Pool, topic string) port.OutboxRepository {
	return &outboxRepository{
		q:     db.New(pool),
		pool:  pool,
		topic: topic,
	}
}

func NewOutboxWithTx(tx pgx.Tx, topic string) port.OutboxRepository {
	return &outboxRepository{
		q:     db.New(tx),
		topic: topic,
	}
}

func (r *outboxRepository) AddOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	err = r.q.InsertOutboxEvent(ctx, db.InsertOutboxEventParams{
		EventID: event.EventID,
		Topic:   r.topic,
		Key:     event.OrderID.String(),
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("q.InsertOutboxEvent: %w", err)
	}

	return nil
}

// FetchPending locks the returned rows, so it must run inside a transaction.
func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if r.pool != nil {
		return nil, fmt.Errorf("FetchPending requires a transaction")
	}

	rows, err := r.q.FetchPendingOutbox(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("q.FetchPendingOutbox: %w", err)
	}

	messages := make([]domain.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, domain.OutboxMessage{
			ID:        row.ID,
			EventID:   row.EventID,
			Topic:     row.Topic,
			Key:       row.Key,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}

	return messages, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := r.q.MarkOutboxSent(ctx, ids); err != nil {
		return fmt.Errorf("q.MarkOutboxSent: %w", err)
	}

	return nil
}
