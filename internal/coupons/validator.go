package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Validator checks a coupon code against an order subtotal and returns
// the discount in paise. Checkout calls it before opening the stock
// transaction, so a slow or failing validator never holds row locks.
type Validator interface {
	Validate(ctx context.Context, code string, subtotalCents int) (int, error)
}

// DBValidator validates against coupon rows in the primary database.
type DBValidator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDBValidator builds a validator tied to the provided GORM DB.
func NewDBValidator(db *gorm.DB) *DBValidator {
	return &DBValidator{db: db, now: time.Now}
}

// Validate resolves the code and computes the discount. Unknown,
// inactive, expired, and under-minimum codes all come back as
// INVALID_COUPON so callers reject the placement outright rather than
// silently dropping the discount.
func (v *DBValidator) Validate(ctx context.Context, code string, subtotalCents int) (int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil
	}

	var coupon models.Coupon
	err := v.db.WithContext(ctx).First(&coupon, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeInvalidCoupon, fmt.Sprintf("coupon %s does not exist", code))
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load coupon")
	}

	if !coupon.Active {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidCoupon, fmt.Sprintf("coupon %s is no longer active", code))
	}
	if coupon.ExpiresAt != nil && v.now().After(*coupon.ExpiresAt) {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidCoupon, fmt.Sprintf("coupon %s has expired", code))
	}
	if subtotalCents < coupon.MinAmountCents {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidCoupon, fmt.Sprintf("coupon %s requires a minimum order amount", code)).
			WithDetails(map[string]any{"min_amount_cents": coupon.MinAmountCents})
	}

	discount := 0
	switch coupon.DiscountType {
	case enums.DiscountTypeFlat:
		discount = coupon.Value
	case enums.DiscountTypePercentage:
		discount = int(decimal.NewFromInt(int64(subtotalCents)).
			Mul(decimal.NewFromInt(int64(coupon.Value))).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart())
	default:
		return 0, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown discount type %s", coupon.DiscountType))
	}

	if discount > subtotalCents {
		discount = subtotalCents
	}
	if discount < 0 {
		discount = 0
	}
	return discount, nil
}
