package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
)

type CreateCouponInput struct {
	Code     string
	Amount   int
	FromDate time.Time
	ToDate   time.Time
}

// UpdateCouponInput holds the fields to change; nil fields are left as they are.
type UpdateCouponInput struct {
	Amount   *int
	FromDate *time.Time
	ToDate   *time.Time
}

// CouponService is the administrative side of coupons. Only the admin who
// created a coupon may change or delete it.
type CouponService struct {
	store port.Store
	log   *slog.Logger
	now   func() time.Time
}

func NewCouponService(store port.Store, log *slog.Logger) *CouponService {
	return &CouponService{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

func (s *CouponService) Create(ctx context.Context, actor domain.Actor, in CreateCouponInput) (domain.Coupon, error) {
	coupon := domain.Coupon{
		ID:        uuid.New(),
		Code:      strings.TrimSpace(in.Code),
		CreatedBy: actor.ID,
		Amount:    in.Amount,
		FromDate:  in.FromDate,
		ToDate:    in.ToDate,
	}

	if err := coupon.ValidateNew(s.now()); err != nil {
		return domain.Coupon{}, err
	}

	_, err := s.store.Coupons().GetCouponByCode(ctx, coupon.Code)
	switch {
	case err == nil:
		return domain.Coupon{}, fmt.Errorf("%w: coupon %s already exists", domain.ErrConflict, coupon.Code)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Coupon{}, fmt.Errorf("coupons.GetCouponByCode: %w", err)
	}

	if err := s.store.Coupons().AddCoupon(ctx, coupon); err != nil {
		return domain.Coupon{}, fmt.Errorf("coupons.AddCoupon: %w", err)
	}

	s.log.InfoContext(ctx, "coupon created", "coupon_id", coupon.ID, "code", coupon.Code, "created_by", actor.ID)

	return s.store.Coupons().GetCoupon(ctx, coupon.ID)
}

func (s *CouponService) Update(ctx context.Context, actor domain.Actor, couponID uuid.UUID, in UpdateCouponInput) (domain.Coupon, error) {
	coupon, err := s.ownedCoupon(ctx, actor, couponID)
	if err != nil {
		return domain.Coupon{}, err
	}

	fromDateChanged := false
	if in.Amount != nil {
		coupon.Amount = *in.Amount
	}
	if in.FromDate != nil && !in.FromDate.Equal(coupon.FromDate) {
		coupon.FromDate = *in.FromDate
		fromDateChanged = true
	}
	if in.ToDate != nil {
		coupon.ToDate = *in.ToDate
	}

	if err := coupon.ValidateUpdate(s.now(), fromDateChanged); err != nil {
		return domain.Coupon{}, err
	}

	updated, err := s.store.Coupons().UpdateCoupon(ctx, coupon)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("coupons.UpdateCoupon: %w", err)
	}
	if !updated {
		return domain.Coupon{}, fmt.Errorf("%w: coupon %s", domain.ErrNotFound, couponID)
	}

	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, actor domain.Actor, couponID uuid.UUID) error {
	deleted, err := s.store.Coupons().DeleteCoupon(ctx, couponID, actor.ID)
	if err != nil {
		return fmt.Errorf("coupons.DeleteCoupon: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: coupon %s", domain.ErrNotFound, couponID)
	}

	s.log.InfoContext(ctx, "coupon deleted", "coupon_id", couponID, "deleted_by", actor.ID)

	return nil
}

// ownedCoupon hides coupons of other admins behind ErrNotFound.
func (s *CouponService) ownedCoupon(ctx context.Context, actor domain.Actor, couponID uuid.UUID) (domain.Coupon, error) {
	coupon, err := s.store.Coupons().GetCoupon(ctx, couponID)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("coupons.GetCoupon: %w", err)
	}

	if coupon.CreatedBy != actor.ID {
		return domain.Coupon{}, fmt.Errorf("%w: coupon %s", domain.ErrNotFound, couponID)
	}

	return coupon, nil
}
