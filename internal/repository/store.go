package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-demo/internal/port"
)

type repositories struct {
	carts    port.CartRepository
	coupons  port.CouponRepository
	orders   port.OrderRepository
	products port.ProductRepository
	outbox   port.OutboxRepository
}

func (r repositories) Carts() port.CartRepository       { return r.carts }
func (r repositories) Coupons() port.CouponRepository   { return r.coupons }
func (r repositories) Orders() port.OrderRepository     { return r.orders }
func (r repositories) Products() port.ProductRepository { return r.products }
func (r repositories) Outbox() port.OutboxRepository    { return r.outbox }

type store struct {
	repositories
	pool        *pgxpool.Pool
	outboxTopic string
}

func NewStore(pool *pgxpool.Pool, outboxTopic string) port.Store {
	return &store{
		repositories: repositories{
			carts:    NewCart(pool),
			coupons:  NewCoupon(pool),
			orders:   NewOrder(pool),
			products: NewProduct(pool),
			outbox:   NewOutbox(pool, outboxTopic),
		},
		pool:        pool,
		outboxTopic: outboxTopic,
	}
}

func (s *store) InTx(ctx context.Context, fn func(repos port.Repositories) error) error {
	_, err := inTx(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(repositories{
			carts:    NewCartWithTx(tx),
			coupons:  NewCouponWithTx(tx),
			orders:   NewOrderWithTx(tx),
			products: NewProductWithTx(tx),
			outbox:   NewOutboxWithTx(tx, s.outboxTopic),
		})
	})
	return err
}

func (s *store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}
	return nil
}
