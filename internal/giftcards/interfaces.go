package giftcards

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
)

// Repository persists gift cards. Balance only moves through the conditional
// decrement so two concurrent redemptions cannot overdraw a card.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, card *models.GiftCard) (*models.GiftCard, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error)
	FindByCode(ctx context.Context, code string) (*models.GiftCard, error)
	List(ctx context.Context, page, pageSize int) ([]models.GiftCard, int64, error)

	// DecrementBalance subtracts amount from the card's balance only when the
	// card is active and holds at least that much. Returns rows affected.
	DecrementBalance(ctx context.Context, code string, amountCents int64) (int64, error)

	// IncrementBalance restores amount to the card, capped at the initial
	// balance by the caller. Used when a paid order is refunded.
	IncrementBalance(ctx context.Context, code string, amountCents int64) (int64, error)
}
