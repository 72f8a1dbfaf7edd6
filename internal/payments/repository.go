package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists payment rows, 1:1 with orders.
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

// Create inserts the payment row alongside its order.
func (r *Repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create payment")
	}
	return payment, nil
}

// GetByOrderID loads the payment for an order.
func (r *Repository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("payment for order %s not found", orderID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load payment")
	}
	return &payment, nil
}

// UpdateStatus moves a payment to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.PaymentStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "failed to update payment status")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("payment for order %s not found", orderID))
	}
	return nil
}

// NewInvoiceNo issues a unique invoice number. The date prefix keeps
// them sortable for finance exports; the random suffix makes collisions
// under concurrent placement practically impossible, and the unique
// index catches the rest.
func NewInvoiceNo(now time.Time) (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create invoice number")
	}
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf))), nil
}

// MaskCard reduces a stored card reference to its last four digits.
// Raw instrument values never leave this package unmasked.
func MaskCard(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, *ref)
	masked := "****"
	if len(digits) >= 4 {
		masked = "**** **** **** " + digits[len(digits)-4:]
	}
	return &masked
}

// MaskUPI hides the handle's local part except its first two characters.
func MaskUPI(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	at := strings.Index(*id, "@")
	if at <= 0 {
		masked := "****"
		return &masked
	}
	local := (*id)[:at]
	keep := 2
	if len(local) < keep {
		keep = len(local)
	}
	masked := local[:keep] + strings.Repeat("*", len(local)-keep) + (*id)[at:]
	return &masked
}
