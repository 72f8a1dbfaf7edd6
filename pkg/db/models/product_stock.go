package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductStock is the authoritative available-quantity row per product.
// It is mutated only through the conditional updates in internal/inventory.
type ProductStock struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OutOfStock is derived, never stored.
func (p ProductStock) OutOfStock() bool {
	return p.AvailableQty == 0
}
