package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
)

// Exchange is a post-delivery size/quantity swap request against one order item.
type Exchange struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID  uuid.UUID            `gorm:"column:order_item_id;type:uuid;not null;index"`
	OrderID      uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	ProductID    uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	UserID       uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	OriginalSize string               `gorm:"column:original_size;not null"`
	NewSize      string               `gorm:"column:new_size;not null"`
	NewQuantity  int                  `gorm:"column:new_quantity;not null"`
	Status       enums.ExchangeStatus `gorm:"column:status;type:text;not null;default:'requested'"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
