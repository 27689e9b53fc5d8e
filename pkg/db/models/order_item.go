package models

import (
	"github.com/google/uuid"
)

// OrderItem is a frozen order line copied from the cart at checkout.
type OrderItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index:idx_order_items_order"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	Image      string    `gorm:"column:image"`
	Quantity   int       `gorm:"column:quantity;not null"`
}
