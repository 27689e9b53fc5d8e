package giftcards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/heetvora/chronomart-backend/pkg/db"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/money"
	"github.com/heetvora/chronomart-backend/pkg/security"
)

const codeLength = 16

// Balance is the public projection of a gift card lookup. The initial
// balance and lifecycle fields stay admin-only.
type Balance struct {
	Code         string `json:"code"`
	BalanceCents int64  `json:"balanceCents"`
	IsActive     bool   `json:"isActive"`
}

// Service issues gift cards and redeems balance against orders.
type Service interface {
	Issue(ctx context.Context, input IssueInput) (*models.GiftCard, error)
	List(ctx context.Context, page, pageSize int) ([]models.GiftCard, int64, error)
	CheckBalance(ctx context.Context, code string) (*Balance, error)
	Deactivate(ctx context.Context, code string) (*models.GiftCard, error)

	// Redeem applies up to maxCents of the card's balance and returns the
	// amount actually taken. The decrement is conditional so a concurrent
	// redemption can never push the balance negative.
	Redeem(ctx context.Context, repo Repository, code string, maxCents int64, at time.Time) (int64, error)

	// Debit removes exactly amountCents from the card. Unlike Redeem it
	// never takes a partial amount; a balance below amountCents is a failure.
	Debit(ctx context.Context, code string, amountCents int64, at time.Time) (*models.GiftCard, error)

	// Restore returns previously redeemed value to the card.
	Restore(ctx context.Context, repo Repository, code string, amountCents int64) error
}

type service struct {
	repo Repository
}

// NewService builds a gift cards service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gift cards repository required")
	}
	return &service{repo: repo}, nil
}

// IssueInput captures a new gift card. A code is generated when none is given.
type IssueInput struct {
	Code         string  `json:"code" validate:"omitempty,min=8,max=32"`
	BalanceCents int64   `json:"balanceCents" validate:"required,min=1"`
	ExpiresAt    *string `json:"expiresAt"`
}

func (s *service) Issue(ctx context.Context, input IssueInput) (*models.GiftCard, error) {
	if input.BalanceCents < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "balance must be at least 1 cent")
	}

	code := NormalizeCode(input.Code)
	if code == "" {
		generated, err := security.GenerateCode(codeLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate gift card code")
		}
		code = generated
	}

	var expiresAt *time.Time
	if input.ExpiresAt != nil && strings.TrimSpace(*input.ExpiresAt) != "" {
		parsed, err := time.Parse(time.RFC3339, *input.ExpiresAt)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiresAt must be RFC 3339")
		}
		expiresAt = &parsed
	}

	card := &models.GiftCard{
		Code:                code,
		InitialBalanceCents: input.BalanceCents,
		BalanceCents:        input.BalanceCents,
		ExpiresAt:           expiresAt,
		IsActive:            true,
	}

	created, err := s.repo.Create(ctx, card)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "gift card code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gift card")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, page, pageSize int) ([]models.GiftCard, int64, error) {
	rows, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gift cards")
	}
	return rows, total, nil
}

func (s *service) CheckBalance(ctx context.Context, code string) (*Balance, error) {
	card, err := s.find(ctx, s.repo, code)
	if err != nil {
		return nil, err
	}
	return &Balance{
		Code:         card.Code,
		BalanceCents: card.BalanceCents,
		IsActive:     card.IsActive,
	}, nil
}

func (s *service) Deactivate(ctx context.Context, code string) (*models.GiftCard, error) {
	card, err := s.find(ctx, s.repo, code)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, card.ID, map[string]any{"is_active": false}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate gift card")
	}
	card.IsActive = false
	return card, nil
}

func (s *service) Redeem(ctx context.Context, repo Repository, code string, maxCents int64, at time.Time) (int64, error) {
	if repo == nil {
		repo = s.repo
	}
	if maxCents < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "redeem amount must be positive")
	}

	card, err := s.find(ctx, repo, code)
	if err != nil {
		return 0, err
	}
	if !card.IsActive {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "gift card is not active")
	}
	if card.ExpiresAt != nil && !at.Before(*card.ExpiresAt) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "gift card has expired")
	}
	if card.BalanceCents <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientResource, "gift card has no remaining balance")
	}

	applied := money.Min(card.BalanceCents, maxCents)
	affected, err := repo.DecrementBalance(ctx, card.Code, applied)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem gift card")
	}
	if affected == 0 {
		// Balance moved underneath us since the read.
		return 0, pkgerrors.New(pkgerrors.CodeInsufficientResource, "gift card balance changed, retry checkout").
			WithDetails(map[string]any{"code": card.Code})
	}
	return applied, nil
}

func (s *service) Debit(ctx context.Context, code string, amountCents int64, at time.Time) (*models.GiftCard, error) {
	if amountCents < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	card, err := s.find(ctx, s.repo, code)
	if err != nil {
		return nil, err
	}
	if !card.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift card is not active")
	}
	if card.ExpiresAt != nil && !at.Before(*card.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift card has expired")
	}

	affected, err := s.repo.DecrementBalance(ctx, card.Code, amountCents)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit gift card")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientResource, "insufficient gift card balance")
	}
	return s.find(ctx, s.repo, card.Code)
}

func (s *service) Restore(ctx context.Context, repo Repository, code string, amountCents int64) error {
	if repo == nil {
		repo = s.repo
	}
	if amountCents < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restore amount must be positive")
	}
	affected, err := repo.IncrementBalance(ctx, NormalizeCode(code), amountCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore gift card balance")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
	}
	return nil
}

func (s *service) find(ctx context.Context, repo Repository, code string) (*models.GiftCard, error) {
	card, err := repo.FindByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift card")
	}
	return card, nil
}

// NormalizeCode maps user-entered codes to storage form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
