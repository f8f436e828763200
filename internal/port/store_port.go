package port

import "context"

type Repositories interface {
	Carts() CartRepository
	Coupons() CouponRepository
	Orders() OrderRepository
	Products() ProductRepository
	Outbox() OutboxRepository
}

// Store hands out repositories bound either to the pool or to a transaction.
type Store interface {
	Repositories
	// InTx runs fn in a single transaction. It commits when fn returns nil and
	// rolls back otherwise.
	InTx(ctx context.Context, fn func(repos Repositories) error) error
	Ping(ctx context.Context) error
}
