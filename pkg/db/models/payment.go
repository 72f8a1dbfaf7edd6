package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
)

// Payment tracks settlement for an order, 1:1. CardRef and UPIID hold opaque
// instrument references; read paths expose only masked forms.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Type             enums.PaymentType   `gorm:"column:type;type:text;not null"`
	Status           enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AmountCents      int                 `gorm:"column:amount_cents;not null"`
	InvoiceNo        string              `gorm:"column:invoice_no;not null;uniqueIndex"`
	CardRef          *string             `gorm:"column:card_ref"`
	UPIID            *string             `gorm:"column:upi_id"`
	GatewayOrderRef  *string             `gorm:"column:gateway_order_ref"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
