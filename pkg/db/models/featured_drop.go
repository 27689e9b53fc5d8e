package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/pkg/types"
)

// FeaturedDrop is a time-windowed merchandising block on the storefront.
type FeaturedDrop struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string           `gorm:"column:title;not null"`
	Description string           `gorm:"column:description"`
	ProductIDs  types.StringList `gorm:"column:product_ids;type:jsonb"`
	StartsAt    *time.Time       `gorm:"column:starts_at"`
	EndsAt      *time.Time       `gorm:"column:ends_at"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
