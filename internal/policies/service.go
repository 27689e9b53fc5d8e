package policies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
)

// Service serves storefront policy copy, keyed by page.
type Service interface {
	Get(ctx context.Context, key string) (*models.Policy, error)
	Upsert(ctx context.Context, input UpsertPolicyInput) (*models.Policy, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds a policies service on the shared connection.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: db}, nil
}

// UpsertPolicyInput replaces the policy copy stored under a key.
type UpsertPolicyInput struct {
	Key          string `json:"key" validate:"required,min=2"`
	Warranty     string `json:"warranty"`
	Authenticity string `json:"authenticity"`
	Returns      string `json:"returns"`
}

func (s *service) Get(ctx context.Context, key string) (*models.Policy, error) {
	normalized := normalizeKey(key)
	var policy models.Policy
	if err := s.db.WithContext(ctx).Where("key = ?", normalized).First(&policy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}
	return &policy, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertPolicyInput) (*models.Policy, error) {
	key := normalizeKey(input.Key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy key is required")
	}

	var policy models.Policy
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&policy).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"warranty":     input.Warranty,
			"authenticity": input.Authenticity,
			"returns":      input.Returns,
		}
		if err := s.db.WithContext(ctx).Model(&policy).Updates(updates).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update policy")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		policy = models.Policy{
			ID:           uuid.New(),
			Key:          key,
			Warranty:     input.Warranty,
			Authenticity: input.Authenticity,
			Returns:      input.Returns,
		}
		if err := s.db.WithContext(ctx).Create(&policy).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create policy")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}
	return s.Get(ctx, key)
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
