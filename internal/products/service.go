package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/heetvora/chronomart-backend/pkg/db"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

// Service exposes catalog management and the stock ledger.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error)

	TakeStock(ctx context.Context, repo Repository, id uuid.UUID, qty int) error
	ReturnStock(ctx context.Context, repo Repository, id uuid.UUID, qty int) error
}

type service struct {
	repo Repository
}

// NewService builds a products service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProductInput captures the payload for a new listing.
type CreateProductInput struct {
	Name            string   `json:"name" validate:"required"`
	Brand           string   `json:"brand" validate:"required"`
	SKU             string   `json:"sku" validate:"required"`
	Description     string   `json:"description"`
	PriceCents      int64    `json:"priceCents" validate:"required,gt=0"`
	Currency        string   `json:"currency"`
	Images          []string `json:"images"`
	Stock           int      `json:"stock" validate:"gte=0"`
	CaseSizeMM      *float64 `json:"caseSizeMM"`
	CaseMaterial    *string  `json:"caseMaterial"`
	StrapMaterial   *string  `json:"strapMaterial"`
	Movement        *string  `json:"movement"`
	WaterResistance *string  `json:"waterResistance"`
	Gender          *string  `json:"gender"`
	Categories      []string `json:"categories"`
}

// UpdateProductInput is a typed patch; nil fields are left untouched.
type UpdateProductInput struct {
	Name            *string   `json:"name"`
	Brand           *string   `json:"brand"`
	Description     *string   `json:"description"`
	PriceCents      *int64    `json:"priceCents" validate:"omitempty,gt=0"`
	Images          *[]string `json:"images"`
	Stock           *int      `json:"stock" validate:"omitempty,gte=0"`
	IsActive        *bool     `json:"isActive"`
	CaseSizeMM      *float64  `json:"caseSizeMM"`
	CaseMaterial    *string   `json:"caseMaterial"`
	StrapMaterial   *string   `json:"strapMaterial"`
	Movement        *string   `json:"movement"`
	WaterResistance *string   `json:"waterResistance"`
	Gender          *string   `json:"gender"`
	Categories      *[]string `json:"categories"`
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "INR"
	}

	product := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Brand:           strings.TrimSpace(input.Brand),
		SKU:             strings.TrimSpace(input.SKU),
		Description:     input.Description,
		PriceCents:      input.PriceCents,
		Currency:        currency,
		Images:          types.StringList(input.Images),
		Stock:           input.Stock,
		IsActive:        true,
		CaseSizeMM:      input.CaseSizeMM,
		CaseMaterial:    input.CaseMaterial,
		StrapMaterial:   input.StrapMaterial,
		Movement:        input.Movement,
		WaterResistance: input.WaterResistance,
		Gender:          input.Gender,
		Categories:      types.StringList(input.Categories),
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		updates["brand"] = strings.TrimSpace(*input.Brand)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceCents != nil {
		updates["price_cents"] = *input.PriceCents
	}
	if input.Images != nil {
		updates["images"] = types.StringList(*input.Images)
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.CaseSizeMM != nil {
		updates["case_size_mm"] = *input.CaseSizeMM
	}
	if input.CaseMaterial != nil {
		updates["case_material"] = *input.CaseMaterial
	}
	if input.StrapMaterial != nil {
		updates["strap_material"] = *input.StrapMaterial
	}
	if input.Movement != nil {
		updates["movement"] = *input.Movement
	}
	if input.WaterResistance != nil {
		updates["water_resistance"] = *input.WaterResistance
	}
	if input.Gender != nil {
		updates["gender"] = *input.Gender
	}
	if input.Categories != nil {
		updates["categories"] = types.StringList(*input.Categories)
	}

	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.mustLoad(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.mustLoad(ctx, id)
}

// Deactivate soft-deletes the listing so existing order snapshots stay valid.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.mustLoad(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.mustLoad(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, total, nil
}

// TakeStock runs the conditional decrement against the supplied repository
// handle (typically one bound to the checkout transaction). Zero rows means
// the product is missing, inactive, or short on stock; the distinction is
// resolved with a follow-up read so callers get a precise error.
func (s *service) TakeStock(ctx context.Context, repo Repository, id uuid.UUID, qty int) error {
	if repo == nil {
		repo = s.repo
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	affected, err := repo.DecrementStock(ctx, id, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}
	if affected > 0 {
		return nil
	}

	product, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"productId": id.String()})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return pkgerrors.New(pkgerrors.CodeInsufficientResource, "product is no longer available").
			WithDetails(map[string]any{"productId": id.String()})
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientResource, "insufficient stock").
		WithDetails(map[string]any{
			"productId": id.String(),
			"requested": qty,
			"available": product.Stock,
		})
}

// ReturnStock gives units back, e.g. when an order is cancelled.
func (s *service) ReturnStock(ctx context.Context, repo Repository, id uuid.UUID, qty int) error {
	if repo == nil {
		repo = s.repo
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := repo.IncrementStock(ctx, id, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
	}
	return nil
}

func (s *service) mustLoad(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
