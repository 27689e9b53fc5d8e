package drops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

// Service manages featured drops, the time-windowed storefront blocks.
type Service interface {
	ListActive(ctx context.Context) ([]models.FeaturedDrop, error)
	ListAll(ctx context.Context) ([]models.FeaturedDrop, error)
	Create(ctx context.Context, input CreateDropInput) (*models.FeaturedDrop, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateDropInput) (*models.FeaturedDrop, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewService builds a drops service on the shared connection.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: db, clock: time.Now}, nil
}

// CreateDropInput captures a new merchandising block.
type CreateDropInput struct {
	Title       string   `json:"title" validate:"required,min=3"`
	Description string   `json:"description"`
	ProductIDs  []string `json:"productIds"`
	StartsAt    *string  `json:"startsAt"`
	EndsAt      *string  `json:"endsAt"`
}

// UpdateDropInput is a typed patch; nil fields are left untouched.
type UpdateDropInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=3"`
	Description *string   `json:"description"`
	ProductIDs  *[]string `json:"productIds"`
	StartsAt    *string   `json:"startsAt"`
	EndsAt      *string   `json:"endsAt"`
	IsActive    *bool     `json:"isActive"`
}

// ListActive returns drops that are flagged active and inside their window.
func (s *service) ListActive(ctx context.Context) ([]models.FeaturedDrop, error) {
	now := s.clock()
	var rows []models.FeaturedDrop
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drops")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.FeaturedDrop, error) {
	var rows []models.FeaturedDrop
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drops")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, input CreateDropInput) (*models.FeaturedDrop, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	startsAt, err := parseWindow(input.StartsAt)
	if err != nil {
		return nil, err
	}
	endsAt, err := parseWindow(input.EndsAt)
	if err != nil {
		return nil, err
	}
	if startsAt != nil && endsAt != nil && !endsAt.After(*startsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window must end after it starts")
	}

	drop := &models.FeaturedDrop{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ProductIDs:  types.StringList(input.ProductIDs),
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		IsActive:    true,
	}
	if err := s.db.WithContext(ctx).Create(drop).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create drop")
	}
	return drop, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateDropInput) (*models.FeaturedDrop, error) {
	drop, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ProductIDs != nil {
		updates["product_ids"] = types.StringList(*input.ProductIDs)
	}
	if input.StartsAt != nil {
		startsAt, err := parseWindow(input.StartsAt)
		if err != nil {
			return nil, err
		}
		updates["starts_at"] = startsAt
	}
	if input.EndsAt != nil {
		endsAt, err := parseWindow(input.EndsAt)
		if err != nil {
			return nil, err
		}
		updates["ends_at"] = endsAt
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	err = s.db.WithContext(ctx).
		Model(&models.FeaturedDrop{}).
		Where("id = ?", drop.ID).
		Updates(updates).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update drop")
	}
	return s.load(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FeaturedDrop{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete drop")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "drop not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.FeaturedDrop, error) {
	var drop models.FeaturedDrop
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&drop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "drop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load drop")
	}
	return &drop, nil
}

func parseWindow(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window timestamps must be RFC 3339")
	}
	return &parsed, nil
}
