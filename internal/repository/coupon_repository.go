package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/checkout-demo/internal/db"
	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/nikolayk812/checkout-demo/internal/port"
)

type couponRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCoupon(pool *pgxpool.Pool) port.CouponRepository {
	return &couponRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewCouponWithTx(tx pgx.Tx) port.CouponRepository {
	return &couponRepository{
		q: db.New(tx),
	}
}

func (r *couponRepository) AddCoupon(ctx context.Context, coupon domain.Coupon) error {
	if coupon.ID == uuid.Nil {
		return fmt.Errorf("coupon.ID is empty")
	}

	err := r.q.InsertCoupon(ctx, db.InsertCouponParams{
		ID:        coupon.ID,
		Code:      strings.TrimSpace(coupon.Code),
		CreatedBy: coupon.CreatedBy,
		Amount:    int32(coupon.Amount),
		FromDate:  coupon.FromDate,
		ToDate:    coupon.ToDate,
	})
	if err != nil {
		return fmt.Errorf("q.InsertCoupon: %w", mapError(err, "coupon "+coupon.Code))
	}

	return nil
}

func (r *couponRepository) GetCoupon(ctx context.Context, couponID uuid.UUID) (domain.Coupon, error) {
	dbCoupon, err := r.q.GetCouponByID(ctx, couponID)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("q.GetCouponByID: %w", mapError(err, "coupon "+couponID.String()))
	}

	return mapCouponToDomain(dbCoupon), nil
}

func (r *couponRepository) GetCouponByCode(ctx context.Context, code string) (domain.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Coupon{}, fmt.Errorf("%w: coupon code is empty", domain.ErrInvalidInput)
	}

	dbCoupon, err := r.q.GetCouponByCode(ctx, code)
	if err != nil {
		return domain.Coupon{}, fmt.Errorf("q.GetCouponByCode: %w", mapError(err, "coupon "+code))
	}

	return mapCouponToDomain(dbCoupon), nil
}

// Redeem is a single conditional update, so two concurrent redemptions by the
// same customer cannot both succeed.
func (r *couponRepository) Redeem(ctx context.Context, couponID uuid.UUID, customerID string) error {
	if customerID == "" {
		return fmt.Errorf("customerID is empty")
	}

	rowsAffected, err := r.q.RedeemCoupon(ctx, db.RedeemCouponParams{
		CustomerID: customerID,
		ID:         couponID,
	})
	if err != nil {
		return fmt.Errorf("q.RedeemCoupon: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetCoupon(ctx, couponID); err != nil {
		return err
	}

	return fmt.Errorf("%w: coupon already used by %s", domain.ErrConflict, customerID)
}

func (r *couponRepository) UpdateCoupon(ctx context.Context, coupon domain.Coupon) (bool, error) {
	rowsAffected, err := r.q.UpdateCoupon(ctx, db.UpdateCouponParams{
		ID:        coupon.ID,
		CreatedBy: coupon.CreatedBy,
		Amount:    int32(coupon.Amount),
		FromDate:  coupon.FromDate,
		ToDate:    coupon.ToDate,
	})
	if err != nil {
		return false, fmt.Errorf("q.UpdateCoupon: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *couponRepository) DeleteCoupon(ctx context.Context, couponID uuid.UUID, createdBy string) (bool, error) {
	if createdBy == "" {
		return false, fmt.Errorf("createdBy is empty")
	}

	rowsAffected, err := r.q.DeleteCoupon(ctx, db.DeleteCouponParams{
		ID:        couponID,
		CreatedBy: createdBy,
	})
	if err != nil {
		return false, fmt.Errorf("q.DeleteCoupon: %w", err)
	}

	return rowsAffected > 0, nil
}

func mapCouponToDomain(row db.Coupon) domain.Coupon {
	return domain.Coupon{
		ID:        row.ID,
		Code:      row.Code,
		CreatedBy: row.CreatedBy,
		Amount:    int(row.Amount),
		FromDate:  row.FromDate,
		ToDate:    row.ToDate,
		UsedBy:    row.UsedBy,
		CreatedAt: row.CreatedAt,
	}
}
