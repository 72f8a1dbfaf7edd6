package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists cart lines.
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

// Upsert adds a line, merging onto an existing (user, product, size)
// line by incrementing its quantity.
func (r *Repository) Upsert(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart quantity must be positive")
	}
	var existing models.CartItem
	err := r.db.WithContext(ctx).
		First(&existing, "user_id = ? AND product_id = ? AND size = ?", item.UserID, item.ProductID, item.Size).Error
	switch {
	case err == nil:
		existing.Quantity += item.Quantity
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to merge cart line")
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create cart line")
		}
		return item, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load cart line")
	}
}

// ListByUser returns the user's cart lines, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list cart")
	}
	return rows, nil
}

// UpdateQuantity sets an owned line's quantity.
func (r *Repository) UpdateQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart quantity must be positive")
	}
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to update cart line")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cart line %s not found", itemID))
	}
	return nil
}

// Delete removes an owned line.
func (r *Repository) Delete(ctx context.Context, itemID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to delete cart line")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cart line %s not found", itemID))
	}
	return nil
}

// ListWishlist returns the user's saved-for-later items, oldest first.
func (r *Repository) ListWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list wishlist")
	}
	return items, nil
}

// DeleteWishlistItem removes an owned wishlist entry.
func (r *Repository) DeleteWishlistItem(ctx context.Context, itemID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to delete wishlist item")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("wishlist item %s not found", itemID))
	}
	return nil
}

// DeleteByUser clears every line in the user's cart. Checkout calls it
// inside the placement transaction after order lines are written.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to clear cart")
	}
	return nil
}
