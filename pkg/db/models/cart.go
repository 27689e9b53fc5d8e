package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single mutable cart per user. Version backs optimistic
// concurrency; every mutation recomputes the denormalized totals.
type Cart struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_carts_user"`
	Items         []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	SubtotalCents int64      `gorm:"column:subtotal_cents;not null;default:0"`
	ItemCount     int        `gorm:"column:item_count;not null;default:0"`
	Version       int64      `gorm:"column:version;not null;default:0"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
