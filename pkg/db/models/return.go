package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
)

// Return is a post-delivery refund request against a single order item.
// AmountCents is computed from the order-time unit price at creation and
// never recomputed.
type Return struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID uuid.UUID          `gorm:"column:order_item_id;type:uuid;not null;index"`
	OrderID     uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	ProductID   uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Quantity    int                `gorm:"column:quantity;not null"`
	AmountCents int                `gorm:"column:amount_cents;not null"`
	Status      enums.ReturnStatus `gorm:"column:status;type:text;not null;default:'requested'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
