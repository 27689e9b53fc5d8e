package models

import (
	"time"

	"github.com/google/uuid"
)

// Policy holds storefront legal/info copy, upserted by key.
type Policy struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string    `gorm:"column:key;not null;uniqueIndex:idx_policies_key"`
	Warranty     string    `gorm:"column:warranty"`
	Authenticity string    `gorm:"column:authenticity"`
	Returns      string    `gorm:"column:returns"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
