package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikolayk812/checkout-demo/internal/port"
)

// Relay moves committed outbox rows to the broker. Delivery is at least once:
// rows are marked sent only after the publisher accepted them.
type Relay struct {
	store     port.Store
	publisher port.EventPublisher
	interval  time.Duration
	batch     int
	log       *slog.Logger
}

func NewRelay(store port.Store, publisher port.EventPublisher, interval time.Duration, batch int, log *slog.Logger) *Relay {
	return &Relay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batch:     batch,
		log:       log,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.InfoContext(ctx, "outbox relay started", "interval", r.interval, "batch", r.batch)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			// drain full batches before waiting again
			for {
				sent, err := r.RelayOnce(ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						r.log.ErrorContext(ctx, "outbox relay failed", "error", err)
					}
					break
				}
				if sent < r.batch {
					break
				}
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many messages were sent.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var sent int

	err := r.store.InTx(ctx, func(repos port.Repositories) error {
		messages, err := repos.Outbox().FetchPending(ctx, r.batch)
		if err != nil {
			return fmt.Errorf("outbox.FetchPending: %w", err)
		}
		if len(messages) == 0 {
			return nil
		}

		if err := r.publisher.Publish(ctx, messages); err != nil {
			return fmt.Errorf("publisher.Publish: %w", err)
		}

		ids := make([]int64, 0, len(messages))
		for _, m := range messages {
			ids = append(ids, m.ID)
		}

		if err := repos.Outbox().MarkSent(ctx, ids); err != nil {
			return fmt.Errorf("outbox.MarkSent: %w", err)
		}

		sent = len(messages)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if sent > 0 {
		r.log.DebugContext(ctx, "outbox messages published", "count", sent)
	}

	return sent, nil
}
