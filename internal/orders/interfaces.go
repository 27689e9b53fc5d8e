package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
)

// Repository persists the order aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)

	// UpdateGuarded applies updates only when the stored version matches,
	// bumping the version in the same statement. Returns rows affected.
	UpdateGuarded(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
}

// ListFilter narrows the admin order listing.
type ListFilter struct {
	UserID   uuid.UUID
	Status   enums.OrderStatus
	Page     int
	PageSize int
}
