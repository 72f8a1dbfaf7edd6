package exchanges

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

// Repository persists exchange requests.
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

// Create inserts an exchange request.
func (r *Repository) Create(ctx context.Context, row *models.Exchange) (*models.Exchange, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create exchange")
	}
	return row, nil
}

// FindByID loads an exchange request.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	var row models.Exchange
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("exchange %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load exchange")
	}
	return &row, nil
}

// UpdateStatusFrom conditionally moves an exchange's status.
func (r *Repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.ExchangeStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Exchange{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to update exchange status")
	}
	return res.RowsAffected == 1, nil
}

// HasActive reports whether the item has an exchange that is still open.
func (r *Repository) HasActive(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
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

// HasActiveReturn reports whether the item has an open return.
func (r *Repository) HasActiveReturn(ctx context.Context, orderItemID uuid.UUID) (bool, error) {
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

// ListByUser returns the user's exchange requests, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Exchange, error) {
	var rows []models.Exchange
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list exchanges")
	}
	return rows, nil
}
