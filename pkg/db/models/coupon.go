package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
)

// Coupon backs the coupon validation collaborator. CRUD lives elsewhere;
// this engine only reads rows to validate codes at checkout.
type Coupon struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	Value          int                `gorm:"column:value;not null"`
	MinAmountCents int                `gorm:"column:min_amount_cents;not null;default:0"`
	ExpiresAt      *time.Time         `gorm:"column:expires_at"`
	Active         bool               `gorm:"column:active;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
