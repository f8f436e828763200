package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
)

// CouponLedger validates and redeems coupons through a repository that is
// usually bound to the caller's transaction.
type CouponLedger struct {
	coupons port.CouponRepository
}

func NewCouponLedger(coupons port.CouponRepository) CouponLedger {
	return CouponLedger{coupons: coupons}
}

func (l CouponLedger) ValidateAndFetch(ctx context.Context, code string) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, fmt.Errorf("%w: coupon code is empty", domain.ErrInvalidInput)
	}

	coupon, err := l.coupons.GetCouponByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("coupons.GetCouponByCode: %w", err)
	}

	return coupon, nil
}

// ValidateActive is ValidateAndFetch plus the validity window check.
func (l CouponLedger) ValidateActive(ctx context.Context, code string, now time.Time) (domain.Coupon, error) {
	coupon, err := l.ValidateAndFetch(ctx, code)
	if err != nil {
		return domain.Coupon{}, err
	}

	if !coupon.IsActive(now) {
		return domain.Coupon{}, fmt.Errorf("%w: coupon is not active", domain.ErrInvalidInput)
	}

	return coupon, nil
}

func (l CouponLedger) AssertUnusedBy(coupon domain.Coupon, customerID string) error {
	if coupon.IsUsedBy(customerID) {
		return fmt.Errorf("%w: coupon %s already used by customer", domain.ErrConflict, coupon.Code)
	}
	return nil
}

// Redeem records the redemption. The storage update is conditional, so a
// concurrent second redemption by the same customer fails with ErrConflict.
func (l CouponLedger) Redeem(ctx context.Context, couponID uuid.UUID, customerID string) error {
	if err := l.coupons.Redeem(ctx, couponID, customerID); err != nil {
		return fmt.Errorf("coupons.Redeem: %w", err)
	}
	return nil
}

// StockLedger applies per-line stock changes. Callers run it inside a
// transaction so a failure on any line undoes the previous ones.
type StockLedger struct {
	products port.ProductRepository
}

func NewStockLedger(products port.ProductRepository) StockLedger {
	return StockLedger{products: products}
}

func (l StockLedger) ReserveAndDecrement(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		if err := l.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("products.DecrementStock: %w", err)
		}
	}
	return nil
}

func (l StockLedger) Restock(ctx context.Context, items []domain.OrderItem) error {
	for _, item := range items {
		if err := l.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("products.IncrementStock: %w", err)
		}
	}
	return nil
}
