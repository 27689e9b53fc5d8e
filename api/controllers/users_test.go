package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/middleware"
	userssvc "github.com/heetvora/chronomart-backend/internal/users"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

type stubUserService struct {
	user  *models.User
	token string
	err   error
}

func (s stubUserService) Register(ctx context.Context, input userssvc.RegisterInput) (*models.User, string, error) {
	return s.user, s.token, s.err
}

func (s stubUserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	return s.user, s.token, s.err
}

func (s stubUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

func (s stubUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input userssvc.UpdateProfileInput) (*models.User, error) {
	return s.user, s.err
}

func (s stubUserService) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	if s.user == nil {
		return nil, 0, s.err
	}
	return []models.User{*s.user}, 1, s.err
}

func (s stubUserService) DefaultAddress(user *models.User) types.Address {
	return types.Address{}
}

func TestRegisterReturnsTokenAndProfile(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ana@example.com", FirstName: "Ana"}
	handler := Register(stubUserService{user: user, token: "signed-token"}, nil)

	body := `{"email":"ana@example.com","password":"longenough","firstName":"Ana"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data authResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token != "signed-token" {
		t.Fatalf("unexpected token %q", envelope.Data.Token)
	}
	if envelope.Data.User.ID != user.ID {
		t.Fatalf("unexpected user id %s", envelope.Data.User.ID)
	}
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	handler := Register(stubUserService{}, nil)

	body := `{"email":"not-an-email","password":"short","firstName":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLoginMapsUnauthorized(t *testing.T) {
	handler := Login(stubUserService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}, nil)

	body := `{"email":"ana@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestGetProfileRequiresContext(t *testing.T) {
	handler := GetProfile(stubUserService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestGetProfileReturnsUser(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "ana@example.com"}
	handler := GetProfile(stubUserService{user: user}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), user.ID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data userResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Email != user.Email {
		t.Fatalf("unexpected email %q", envelope.Data.Email)
	}
}
