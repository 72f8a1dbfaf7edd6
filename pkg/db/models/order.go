package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/types"
)

// Order is the order header. Totals are frozen at creation; the embedded
// shipping address is a point-in-time copy, not a reference.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber     int64               `gorm:"column:order_number;autoIncrement;uniqueIndex"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'placed'"`
	SubtotalCents   int                 `gorm:"column:subtotal_cents;not null"`
	DiscountCents   int                 `gorm:"column:discount_cents;not null;default:0"`
	TotalCents      int                 `gorm:"column:total_cents;not null"`
	CouponCode      *string             `gorm:"column:coupon_code"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	DeliveryOTP     *string             `gorm:"column:delivery_otp"`
	DeliveryDate    *time.Time          `gorm:"column:delivery_date"`
	StockRestored   bool                `gorm:"column:stock_restored;not null;default:false"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment         *Payment            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
