package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/auth"
	"github.com/heetvora/chronomart-backend/pkg/config"
	dbpkg "github.com/heetvora/chronomart-backend/pkg/db"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/security"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

// Service exposes account lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error)
	List(ctx context.Context, page, pageSize int) ([]models.User, int64, error)
	DefaultAddress(user *models.User) types.Address
}

type service struct {
	repo   Repository
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
	clock  func() time.Time
}

// NewService builds a users service backed by the provided stack.
func NewService(repo Repository, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo:   repo,
		jwtCfg: jwtCfg,
		pwCfg:  pwCfg,
		clock:  time.Now,
	}, nil
}

// RegisterInput captures a new account payload.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
}

// UpdateProfileInput is a typed patch; nil fields are left untouched.
type UpdateProfileInput struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	Password      *string `json:"password" validate:"omitempty,min=8"`
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	StreetAddress *string `json:"streetAddress"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	PostalCode    *string `json:"postalCode"`
	Country       *string `json:"country"`
	Phone         *string `json:"phoneNo"`
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	token, err := s.mintToken(created)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.mintToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.User, error) {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		existing, err := s.repo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if existing != nil && existing.ID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		updates["email"] = email
	}
	if input.Password != nil {
		hash, err := security.HashPassword(*input.Password, s.pwCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.StreetAddress != nil {
		updates["street_address"] = *input.StreetAddress
	}
	if input.City != nil {
		updates["city"] = *input.City
	}
	if input.State != nil {
		updates["state"] = *input.State
	}
	if input.PostalCode != nil {
		updates["postal_code"] = *input.PostalCode
	}
	if input.Country != nil {
		updates["country"] = *input.Country
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}

	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, userID, updates); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return s.GetProfile(ctx, userID)
}

func (s *service) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	rows, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return rows, total, nil
}

// DefaultAddress projects the account's stored address fields into the shape
// merged under checkout shipping addresses.
func (s *service) DefaultAddress(user *models.User) types.Address {
	if user == nil {
		return types.Address{}
	}
	return types.Address{
		StreetAddress: user.StreetAddress,
		City:          user.City,
		State:         user.State,
		PostalCode:    user.PostalCode,
		Country:       user.Country,
		Phone:         user.Phone,
	}
}

func (s *service) mintToken(user *models.User) (string, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.clock(), auth.AccessTokenPayload{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return token, nil
}
