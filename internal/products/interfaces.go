package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
)

// Repository persists catalog listings and owns the stock column.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error)

	// DecrementStock atomically takes qty units if the product is active and
	// has enough stock. Returns the number of rows updated (0 or 1).
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	// IncrementStock returns qty units to the shelf.
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// ListFilter narrows the public catalog listing.
type ListFilter struct {
	Brand      string
	Category   string
	Search     string
	OnlyActive bool
	Page       int
	PageSize   int
}
