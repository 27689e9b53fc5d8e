package giftcards

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gift cards repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, card *models.GiftCard) (*models.GiftCard, error) {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	var card models.GiftCard
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.GiftCard, error) {
	var card models.GiftCard
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *repository) List(ctx context.Context, page, pageSize int) ([]models.GiftCard, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.GiftCard{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.GiftCard
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) DecrementBalance(ctx context.Context, code string, amountCents int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("code = ? AND is_active = ? AND balance_cents >= ?", code, true, amountCents).
		Update("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	return result.RowsAffected, result.Error
}

func (r *repository) IncrementBalance(ctx context.Context, code string, amountCents int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("code = ?", code).
		Update("balance_cents", gorm.Expr("balance_cents + ?", amountCents))
	return result.RowsAffected, result.Error
}
