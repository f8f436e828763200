package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
)

type CouponRepository interface {
	AddCoupon(ctx context.Context, coupon domain.Coupon) error
	GetCoupon(ctx context.Context, couponID uuid.UUID) (domain.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error)
	// Redeem appends customerID to the coupon's usedBy set unless it is already there.
	Redeem(ctx context.Context, couponID uuid.UUID, customerID string) error
	UpdateCoupon(ctx context.Context, coupon domain.Coupon) (bool, error)
	DeleteCoupon(ctx context.Context, couponID uuid.UUID, createdBy string) (bool, error)
}
