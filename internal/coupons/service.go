package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/heetvora/chronomart-backend/pkg/db"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/money"
)

// Service manages coupon codes and prices them against order subtotals.
type Service interface {
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context, page, pageSize int) ([]models.Coupon, int64, error)

	// Validate re-checks the coupon against the given subtotal and returns the
	// discount it yields. Always called with the live repository at commit
	// time; client-supplied discount amounts are never trusted.
	Validate(ctx context.Context, repo Repository, code string, subtotalCents int64, at time.Time) (*models.Coupon, int64, error)
}

type service struct {
	repo Repository
}

// NewService builds a coupons service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	return &service{repo: repo}, nil
}

// CreateCouponInput captures a new coupon definition.
type CreateCouponInput struct {
	Code             string  `json:"code" validate:"required,min=3,max=32"`
	DiscountType     string  `json:"discountType" validate:"required"`
	Value            int64   `json:"value" validate:"required,min=1"`
	MinOrderCents    int64   `json:"minOrderCents" validate:"min=0"`
	MaxDiscountCents *int64  `json:"maxDiscountCents" validate:"omitempty,min=1"`
	ExpiresAt        *string `json:"expiresAt"`
}

// UpdateCouponInput is a typed patch; nil fields are left untouched.
type UpdateCouponInput struct {
	Value            *int64  `json:"value" validate:"omitempty,min=1"`
	MinOrderCents    *int64  `json:"minOrderCents" validate:"omitempty,min=0"`
	MaxDiscountCents *int64  `json:"maxDiscountCents"`
	ExpiresAt        *string `json:"expiresAt"`
	IsActive         *bool   `json:"isActive"`
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	discountType, err := enums.ParseDiscountType(input.DiscountType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if discountType == enums.DiscountTypePercent && input.Value > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value must be at most 100")
	}

	expiresAt, err := parseExpiry(input.ExpiresAt)
	if err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:             NormalizeCode(input.Code),
		DiscountType:     discountType,
		Value:            input.Value,
		MinOrderCents:    input.MinOrderCents,
		MaxDiscountCents: input.MaxDiscountCents,
		ExpiresAt:        expiresAt,
		IsActive:         true,
	}

	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	updates := map[string]any{}
	if input.Value != nil {
		if coupon.DiscountType == enums.DiscountTypePercent && *input.Value > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage value must be at most 100")
		}
		updates["value"] = *input.Value
	}
	if input.MinOrderCents != nil {
		updates["min_order_cents"] = *input.MinOrderCents
	}
	if input.MaxDiscountCents != nil {
		updates["max_discount_cents"] = *input.MaxDiscountCents
	}
	if input.ExpiresAt != nil {
		expiresAt, err := parseExpiry(input.ExpiresAt)
		if err != nil {
			return nil, err
		}
		updates["expires_at"] = expiresAt
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	return coupon, nil
}

func (s *service) List(ctx context.Context, page, pageSize int) ([]models.Coupon, int64, error) {
	rows, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return rows, total, nil
}

func (s *service) Validate(ctx context.Context, repo Repository, code string, subtotalCents int64, at time.Time) (*models.Coupon, int64, error) {
	if repo == nil {
		repo = s.repo
	}

	coupon, err := repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	if !coupon.IsActive {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	}
	if coupon.ExpiresAt != nil && !at.Before(*coupon.ExpiresAt) {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if subtotalCents < coupon.MinOrderCents {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "order subtotal below coupon minimum").
			WithDetails(map[string]any{
				"minOrderCents": coupon.MinOrderCents,
				"subtotalCents": subtotalCents,
			})
	}

	return coupon, Discount(coupon, subtotalCents), nil
}

// Discount prices a coupon against a subtotal. The result never exceeds the
// subtotal or the coupon's cap.
func Discount(coupon *models.Coupon, subtotalCents int64) int64 {
	var discount int64
	switch coupon.DiscountType {
	case enums.DiscountTypePercent:
		discount = money.PercentOf(subtotalCents, decimal.NewFromInt(coupon.Value))
	case enums.DiscountTypeFixed:
		discount = coupon.Value
	}

	if coupon.MaxDiscountCents != nil {
		discount = money.Clamp(discount, *coupon.MaxDiscountCents)
	}
	return money.Min(discount, subtotalCents)
}

// NormalizeCode maps user-entered codes to storage form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func parseExpiry(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiresAt must be RFC 3339")
	}
	return &parsed, nil
}
