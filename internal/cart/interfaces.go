package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
)

// Repository persists the cart aggregate and its lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)

	// BumpVersion writes the recomputed totals guarded by the expected
	// version. Returns the number of rows updated (0 on a version miss).
	BumpVersion(ctx context.Context, cartID uuid.UUID, expectedVersion int64, subtotalCents int64, itemCount int) (int64, error)

	UpsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}
