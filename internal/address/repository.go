package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the user address book. Reads are always scoped to the
// owning user so one customer can never ship to another's saved row.
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

// Create stores a new address for the user.
func (r *Repository) Create(ctx context.Context, addr *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(addr).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create address")
	}
	return addr, nil
}

// Get loads an address only when it belongs to the given user. A row
// owned by someone else is reported the same as a missing row.
func (r *Repository) Get(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	var addr models.Address
	err := r.db.WithContext(ctx).
		First(&addr, "id = ? AND user_id = ?", addressID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidAddress, fmt.Sprintf("address %s not found for user", addressID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load address")
	}
	return &addr, nil
}

// ListByUser returns the user's address book, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list addresses")
	}
	return rows, nil
}

// Delete removes an address owned by the user.
func (r *Repository) Delete(ctx context.Context, addressID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to delete address")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("address %s not found for user", addressID))
	}
	return nil
}

// Snapshot copies the row into the value form orders embed. Later edits
// to the address book never change what an order shipped to.
func Snapshot(addr *models.Address) types.Address {
	return types.Address{
		Name:       addr.Name,
		Phone:      addr.Phone,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}
