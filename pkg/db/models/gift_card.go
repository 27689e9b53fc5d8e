package models

import (
	"time"

	"github.com/google/uuid"
)

// GiftCard carries a prepaid balance. InitialBalanceCents never changes;
// BalanceCents only moves through conditional decrements.
type GiftCard struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code                string     `gorm:"column:code;not null;uniqueIndex:idx_gift_cards_code"`
	InitialBalanceCents int64      `gorm:"column:initial_balance_cents;not null"`
	BalanceCents        int64      `gorm:"column:balance_cents;not null"`
	ExpiresAt           *time.Time `gorm:"column:expires_at"`
	IsActive            bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
