package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/pkg/enums"
)

// Coupon is a reusable discount code. Codes are stored uppercase; value is
// either a percentage (0-100) or a fixed amount in cents depending on type.
type Coupon struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string             `gorm:"column:code;not null;uniqueIndex:idx_coupons_code"`
	DiscountType     enums.DiscountType `gorm:"column:discount_type;not null"`
	Value            int64              `gorm:"column:value;not null"`
	MinOrderCents    int64              `gorm:"column:min_order_cents;not null;default:0"`
	MaxDiscountCents *int64             `gorm:"column:max_discount_cents"`
	ExpiresAt        *time.Time         `gorm:"column:expires_at"`
	IsActive         bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
