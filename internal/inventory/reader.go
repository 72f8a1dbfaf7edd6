package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reader is the read-only view of the ledger handed to snapshot code.
type Reader struct {
	db *gorm.DB
}

// NewReader builds a reader tied to the provided GORM DB.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// Availability reports current available quantities for the products.
func (r *Reader) Availability(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return Availability(ctx, r.db, productIDs)
}
