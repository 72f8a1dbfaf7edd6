package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingRepository persists gateway orders created by the initiate
// step. Rows hold no stock; they only remember what the customer is
// paying for until confirm arrives or the TTL reaper expires them.
type PendingRepository struct {
	db *gorm.DB
}

// NewPendingRepository builds a repository tied to the provided GORM DB.
func NewPendingRepository(db *gorm.DB) *PendingRepository {
	return &PendingRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *PendingRepository) WithTx(tx *gorm.DB) *PendingRepository {
	return &PendingRepository{db: tx}
}

// Create inserts a pending gateway order.
func (r *PendingRepository) Create(ctx context.Context, row *models.PendingGatewayOrder) (*models.PendingGatewayOrder, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if db.IsUniqueViolation(err, "idx_pending_gateway_orders_ref") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "gateway order reference already initiated")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create pending gateway order")
	}
	return row, nil
}

// FindByRefForUser loads a pending order by gateway reference, scoped to
// the initiating user.
func (r *PendingRepository) FindByRefForUser(ctx context.Context, ref string, userID uuid.UUID) (*models.PendingGatewayOrder, error) {
	var row models.PendingGatewayOrder
	err := r.db.WithContext(ctx).
		First(&row, "gateway_order_ref = ? AND user_id = ?", ref, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("gateway order %s not found", ref))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load pending gateway order")
	}
	return &row, nil
}

// MarkConfirmed flips a pending row to confirmed. The conditional write
// makes a second confirm for the same reference lose cleanly.
func (r *PendingRepository) MarkConfirmed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingGatewayOrder{}).
		Where("id = ? AND status = ?", id, enums.GatewayOrderStatusPending).
		Update("status", enums.GatewayOrderStatusConfirmed)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to confirm pending gateway order")
	}
	return res.RowsAffected == 1, nil
}

// ExpireBefore marks every pending row whose TTL elapsed before the
// given instant as expired and returns how many were reaped.
func (r *PendingRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PendingGatewayOrder{}).
		Where("status = ? AND expires_at < ?", enums.GatewayOrderStatusPending, cutoff).
		Update("status", enums.GatewayOrderStatusExpired)
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to expire pending gateway orders")
	}
	return res.RowsAffected, nil
}

// PurgeBefore deletes expired and confirmed rows whose TTL elapsed
// before the given instant. Confirmed rows have already produced an
// order; expired ones never will.
func (r *PendingRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at < ?",
			[]enums.GatewayOrderStatus{enums.GatewayOrderStatusExpired, enums.GatewayOrderStatusConfirmed}, cutoff).
		Delete(&models.PendingGatewayOrder{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to purge pending gateway orders")
	}
	return res.RowsAffected, nil
}
