package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem holds a saved-for-later product reference.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Size      string    `gorm:"column:size;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
