package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line of a user's cart. Lines with the same
// (user, product, size) tuple are merged by incrementing quantity.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_user_product_size"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_user_product_size"`
	Size      string    `gorm:"column:size;not null;uniqueIndex:idx_cart_user_product_size"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
