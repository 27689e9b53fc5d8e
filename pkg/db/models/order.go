package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/pkg/enums"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

// Order is the settled checkout aggregate. Line items and the shipping
// address are immutable snapshots; only payment bookkeeping and the status
// machine mutate after creation. Version backs the admin-action optimistic
// concurrency check.
type Order struct {
	ID     uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID   `gorm:"column:user_id;type:uuid;not null;index:idx_orders_user"`
	Items  []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	ShippingAddress types.Address        `gorm:"column:shipping_address;type:jsonb"`
	PaymentMethod   string               `gorm:"column:payment_method;not null"`
	PaymentResult   *types.PaymentResult `gorm:"column:payment_result;type:jsonb;serializer:json"`

	ItemsPriceCents    int64  `gorm:"column:items_price_cents;not null"`
	TaxPriceCents      int64  `gorm:"column:tax_price_cents;not null;default:0"`
	ShippingPriceCents int64  `gorm:"column:shipping_price_cents;not null;default:0"`
	DiscountCents      int64  `gorm:"column:discount_cents;not null;default:0"`
	GiftCardCents      int64  `gorm:"column:gift_card_cents;not null;default:0"`
	TotalPriceCents    int64  `gorm:"column:total_price_cents;not null"`
	CouponCode         string `gorm:"column:coupon_code"`
	GiftCardCode       string `gorm:"column:gift_card_code"`

	Status enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`

	IsPaid bool       `gorm:"column:is_paid;not null;default:false"`
	PaidAt *time.Time `gorm:"column:paid_at"`

	IsDelivered bool       `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`

	IsRefunded        bool       `gorm:"column:is_refunded;not null;default:false"`
	RefundedAt        *time.Time `gorm:"column:refunded_at"`
	RefundAmountCents int64      `gorm:"column:refund_amount_cents;not null;default:0"`
	RefundReason      string     `gorm:"column:refund_reason"`

	Version   int64     `gorm:"column:version;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
