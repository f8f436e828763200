package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CouponCodeMaxLen = 10
	CouponMinAmount  = 1
	CouponMaxAmount  = 100
)

type Coupon struct {
	ID        uuid.UUID
	Code      string
	CreatedBy string
	// Amount is a percentage off in [1, 100].
	Amount   int
	FromDate time.Time
	ToDate   time.Time
	UsedBy   []string

	CreatedAt time.Time
}

func (c Coupon) IsUsedBy(customerID string) bool {
	return slices.Contains(c.UsedBy, customerID)
}

func (c Coupon) IsActive(now time.Time) bool {
	return !now.Before(c.FromDate) && !now.After(c.ToDate)
}

// ValidateNew checks the rules a coupon must satisfy when it is created.
func (c Coupon) ValidateNew(now time.Time) error {
	code := strings.TrimSpace(c.Code)
	if code == "" || len(code) > CouponCodeMaxLen {
		return fmt.Errorf("%w: code must be 1-%d characters", ErrInvalidInput, CouponCodeMaxLen)
	}
	if !c.FromDate.After(now) {
		return fmt.Errorf("%w: fromDate must be in the future", ErrInvalidInput)
	}
	return c.validateWindow()
}

func (c Coupon) validateWindow() error {
	if c.Amount < CouponMinAmount || c.Amount > CouponMaxAmount {
		return fmt.Errorf("%w: amount must be between %d and %d", ErrInvalidInput, CouponMinAmount, CouponMaxAmount)
	}
	if c.ToDate.Before(c.FromDate) {
		return fmt.Errorf("%w: toDate must be after fromDate", ErrInvalidInput)
	}
	return nil
}

// ValidateUpdate checks an edited coupon. fromDate is only required to be in
// the future when it was changed.
func (c Coupon) ValidateUpdate(now time.Time, fromDateChanged bool) error {
	if fromDateChanged && !c.FromDate.After(now) {
		return fmt.Errorf("%w: fromDate must be in the future", ErrInvalidInput)
	}
	return c.validateWindow()
}
