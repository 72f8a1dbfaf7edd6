package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog entry consulted for live pricing.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Brand      *string   `gorm:"column:brand"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	ImageURL   *string   `gorm:"column:image_url"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
