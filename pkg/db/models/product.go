package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/pkg/types"
)

// Product is a catalog listing. Checkout touches only `stock`; the rest is
// catalog metadata managed by admins.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Brand       string           `gorm:"column:brand;not null;index:idx_products_brand"`
	SKU         string           `gorm:"column:sku;not null;uniqueIndex:idx_products_sku"`
	Description string           `gorm:"column:description"`
	PriceCents  int64            `gorm:"column:price_cents;not null"`
	Currency    string           `gorm:"column:currency;not null;default:'INR'"`
	Images      types.StringList `gorm:"column:images;type:jsonb"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`

	CaseSizeMM      *float64         `gorm:"column:case_size_mm;type:numeric(5,2)"`
	CaseMaterial    *string          `gorm:"column:case_material"`
	StrapMaterial   *string          `gorm:"column:strap_material"`
	Movement        *string          `gorm:"column:movement"`
	WaterResistance *string          `gorm:"column:water_resistance"`
	Gender          *string          `gorm:"column:gender"`
	Categories      types.StringList `gorm:"column:categories;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
