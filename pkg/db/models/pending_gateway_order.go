package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
)

// PendingGatewayOrder is written by the online-payment initiate step. No stock
// is reserved and no order rows exist until the matching confirm arrives;
// rows past ExpiresAt are reaped by the cron worker.
type PendingGatewayOrder struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID       uuid.UUID                `gorm:"column:address_id;type:uuid;not null"`
	CouponCode      *string                  `gorm:"column:coupon_code"`
	AmountCents     int                      `gorm:"column:amount_cents;not null"`
	GatewayOrderRef string                   `gorm:"column:gateway_order_ref;not null;uniqueIndex:idx_pending_gateway_orders_ref"`
	Status          enums.GatewayOrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ExpiresAt       time.Time                `gorm:"column:expires_at;not null;index"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
