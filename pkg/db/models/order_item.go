package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
)

// OrderItem snapshots one cart line at order-creation time. Everything except
// Status is immutable once written.
type OrderItem struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	UserID         uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	ProductID      uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	Name           string                `gorm:"column:name;not null"`
	Size           string                `gorm:"column:size;not null"`
	Quantity       int                   `gorm:"column:quantity;not null"`
	UnitPriceCents int                   `gorm:"column:unit_price_cents;not null"`
	Status         enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'ordered'"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
