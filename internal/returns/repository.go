package returns

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists return requests.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a return request.
func (r *Repository) Create(ctx context.Context, row *models.Return) (*models.Return, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create return")
	}
	return row, nil
}

// FindByID loads a return request.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Return, error) {
	var row models.Return
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("return %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load return")
	}
	return &row, nil
}

// UpdateStatusFrom conditionally moves a return's status. The guard is
// what makes the approve-time stock restore run exactly once.
func (r *Repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.ReturnStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to update return status")
	}
	return res.RowsAffected == 1, nil
}

// ReturnedQuantity sums the quantities already claimed by this item's
// non-rejected returns.
func (r *Repository) ReturnedQuantity(ctx context.Context, orderItemID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("order_item_id = ? AND status <> ?", orderItemID, enums.ReturnStatusRejected).
		Scan(&total).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to sum returned quantity")
	}
	return total, nil
}

// HasActive reports whether the item has a return that is still open.
func (r *Repository) HasActive(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Return{}).
		Where("order_item_id = ? AND status IN ?", orderItemID, []enums.ReturnStatus{
			enums.ReturnStatusRequested, enums.ReturnStatusApproved,
		}).
		Count(&n).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check active returns")
	}
	return n > 0, nil
}

// HasActiveExchange reports whether the item has an open exchange.
// Returns and exchanges are mutually exclusive per order item.
func (r *Repository) HasActiveExchange(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Exchange{}).
		Where("order_item_id = ? AND status IN ?", orderItemID, []enums.ExchangeStatus{
			enums.ExchangeStatusRequested, enums.ExchangeStatusApproved,
		}).
		Count(&n).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check active exchanges")
	}
	return n > 0, nil
}

// ListByUser returns the user's return requests, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Return, error) {
	var rows []models.Return
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list returns")
	}
	return rows, nil
}
