package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reservation is a single stock decrement request. Size is carried for
// error reporting only; stock is tracked per product.
type Reservation struct {
	ProductID uuid.UUID
	Size      string
	Qty       int
}

// Reserve conditionally decrements available quantity for every request
// inside the caller's transaction. The decrement only lands when enough
// stock remains, so concurrent reservations can never drive a row
// negative. The first line that cannot be satisfied fails the whole
// call; the caller's transaction rollback undoes any earlier decrements.
func Reserve(ctx context.Context, tx *gorm.DB, requests []Reservation) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "inventory reserve requires a transaction")
	}
	for _, req := range requests {
		if req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("reservation quantity must be positive for product %s", req.ProductID))
		}
	}

	// Deterministic order keeps concurrent multi-line reservations from
	// taking row locks in conflicting order.
	ordered := make([]Reservation, len(requests))
	copy(ordered, requests)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].ProductID != ordered[j].ProductID {
			return ordered[i].ProductID.String() < ordered[j].ProductID.String()
		}
		return ordered[i].Size < ordered[j].Size
	})

	for _, req := range ordered {
		res := tx.WithContext(ctx).
			Model(&models.ProductStock{}).
			Where("product_id = ? AND available_qty >= ?", req.ProductID, req.Qty).
			UpdateColumn("available_qty", gorm.Expr("available_qty - ?", req.Qty))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to reserve stock")
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for product %s size %s", req.ProductID, req.Size)).
				WithDetails(map[string]any{
					"product_id": req.ProductID,
					"size":       req.Size,
					"requested":  req.Qty,
				})
		}
	}
	return nil
}

// Restore puts quantity back on the shelf. Unconditional: restores come
// from cancellations and approved returns, which can only return what a
// prior reservation took.
func Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "inventory restore requires a transaction")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restore quantity must be positive")
	}
	res := tx.WithContext(ctx).
		Model(&models.ProductStock{}).
		Where("product_id = ?", productID).
		UpdateColumn("available_qty", gorm.Expr("available_qty + ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to restore stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no stock row for product %s", productID))
	}
	return nil
}

// Availability reads current available quantities for the given
// products. Missing rows are simply absent from the result; callers
// treat them as zero.
func Availability(ctx context.Context, db *gorm.DB, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var rows []models.ProductStock
	if err := db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load stock")
	}
	for _, row := range rows {
		out[row.ProductID] = row.AvailableQty
	}
	return out, nil
}
