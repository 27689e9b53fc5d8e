package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	checkoutsvc "github.com/heetvora/chronomart-backend/internal/checkout"
	couponssvc "github.com/heetvora/chronomart-backend/internal/coupons"
	dropssvc "github.com/heetvora/chronomart-backend/internal/drops"
	giftcardssvc "github.com/heetvora/chronomart-backend/internal/giftcards"
	orderssvc "github.com/heetvora/chronomart-backend/internal/orders"
	paymentssvc "github.com/heetvora/chronomart-backend/internal/payments"
	policiessvc "github.com/heetvora/chronomart-backend/internal/policies"
	productssvc "github.com/heetvora/chronomart-backend/internal/products"
	userssvc "github.com/heetvora/chronomart-backend/internal/users"
	pkgAuth "github.com/heetvora/chronomart-backend/pkg/auth"
	"github.com/heetvora/chronomart-backend/pkg/config"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/logger"
	"github.com/heetvora/chronomart-backend/pkg/redis"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) Register(ctx context.Context, input userssvc.RegisterInput) (*models.User, string, error) {
	panic("unimplemented")
}

func (stubUsersService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	panic("unimplemented")
}

func (stubUsersService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, userID uuid.UUID, input userssvc.UpdateProfileInput) (*models.User, error) {
	panic("unimplemented")
}

func (stubUsersService) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	return []models.User{}, 0, nil
}

func (stubUsersService) DefaultAddress(user *models.User) types.Address {
	return types.Address{}
}

type stubProductsService struct{}

func (stubProductsService) Create(ctx context.Context, input productssvc.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Update(ctx context.Context, id uuid.UUID, input productssvc.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductsService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductsService) List(ctx context.Context, filter productssvc.ListFilter) ([]models.Product, int64, error) {
	return []models.Product{}, 0, nil
}

func (stubProductsService) TakeStock(ctx context.Context, repo productssvc.Repository, id uuid.UUID, qty int) error {
	panic("unimplemented")
}

func (stubProductsService) ReturnStock(ctx context.Context, repo productssvc.Repository, id uuid.UUID, qty int) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return &models.Cart{UserID: userID}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Checkout(ctx context.Context, userID uuid.UUID, input checkoutsvc.CheckoutInput) (*models.Order, error) {
	panic("unimplemented")
}

type stubOrdersService struct{}

func (stubOrdersService) GetByID(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) ListMine(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int64, error) {
	return []models.Order{}, 0, nil
}

func (stubOrdersService) ListAll(ctx context.Context, filter orderssvc.ListFilter) ([]models.Order, int64, error) {
	return []models.Order{}, 0, nil
}

func (stubOrdersService) MarkPaid(ctx context.Context, orderID uuid.UUID, result *types.PaymentResult) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkShipped(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Refund(ctx context.Context, orderID uuid.UUID, input orderssvc.RefundInput) (*models.Order, error) {
	panic("unimplemented")
}

type stubCouponsService struct{}

func (stubCouponsService) Create(ctx context.Context, input couponssvc.CreateCouponInput) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponsService) Update(ctx context.Context, id uuid.UUID, input couponssvc.UpdateCouponInput) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponsService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubCouponsService) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	panic("unimplemented")
}

func (stubCouponsService) List(ctx context.Context, page, pageSize int) ([]models.Coupon, int64, error) {
	panic("unimplemented")
}

func (stubCouponsService) Validate(ctx context.Context, repo couponssvc.Repository, code string, subtotalCents int64, at time.Time) (*models.Coupon, int64, error) {
	return &models.Coupon{Code: code}, 0, nil
}

type stubGiftCardsService struct{}

func (stubGiftCardsService) Issue(ctx context.Context, input giftcardssvc.IssueInput) (*models.GiftCard, error) {
	panic("unimplemented")
}

func (stubGiftCardsService) List(ctx context.Context, page, pageSize int) ([]models.GiftCard, int64, error) {
	panic("unimplemented")
}

func (stubGiftCardsService) CheckBalance(ctx context.Context, code string) (*giftcardssvc.Balance, error) {
	return &giftcardssvc.Balance{Code: code, IsActive: true}, nil
}

func (stubGiftCardsService) Deactivate(ctx context.Context, code string) (*models.GiftCard, error) {
	panic("unimplemented")
}

func (stubGiftCardsService) Redeem(ctx context.Context, repo giftcardssvc.Repository, code string, maxCents int64, at time.Time) (int64, error) {
	panic("unimplemented")
}

func (stubGiftCardsService) Debit(ctx context.Context, code string, amountCents int64, at time.Time) (*models.GiftCard, error) {
	panic("unimplemented")
}

func (stubGiftCardsService) Restore(ctx context.Context, repo giftcardssvc.Repository, code string, amountCents int64) error {
	panic("unimplemented")
}

type stubPaymentsService struct{}

func (stubPaymentsService) InitiateSession(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, input paymentssvc.InitiateInput) (*paymentssvc.SessionResult, error) {
	panic("unimplemented")
}

func (stubPaymentsService) HandleCallback(ctx context.Context, input paymentssvc.CallbackInput) (*models.Order, error) {
	panic("unimplemented")
}

type stubDropsService struct{}

func (stubDropsService) ListActive(ctx context.Context) ([]models.FeaturedDrop, error) {
	return []models.FeaturedDrop{}, nil
}

func (stubDropsService) ListAll(ctx context.Context) ([]models.FeaturedDrop, error) {
	panic("unimplemented")
}

func (stubDropsService) Create(ctx context.Context, input dropssvc.CreateDropInput) (*models.FeaturedDrop, error) {
	panic("unimplemented")
}

func (stubDropsService) Update(ctx context.Context, id uuid.UUID, input dropssvc.UpdateDropInput) (*models.FeaturedDrop, error) {
	panic("unimplemented")
}

func (stubDropsService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubPoliciesService struct{}

func (stubPoliciesService) Get(ctx context.Context, key string) (*models.Policy, error) {
	return &models.Policy{Key: key}, nil
}

func (stubPoliciesService) Upsert(ctx context.Context, input policiessvc.UpsertPolicyInput) (*models.Policy, error) {
	panic("unimplemented")
}

type stubWishlistService struct{}

func (stubWishlistService) List(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	return []models.Product{}, nil
}

func (stubWishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubWishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:          "secret",
			Issuer:          "issuer",
			ExpirationHours: 1,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		Services{
			Users:     stubUsersService{},
			Products:  stubProductsService{},
			Cart:      stubCartService{},
			Checkout:  stubCheckoutService{},
			Orders:    stubOrdersService{},
			Coupons:   stubCouponsService{},
			GiftCards: stubGiftCardsService{},
			Payments:  stubPaymentsService{},
			Drops:     stubDropsService{},
			Policies:  stubPoliciesService{},
			Wishlist:  stubWishlistService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, isAdmin bool) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:  uuid.New(),
		IsAdmin: isAdmin,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestStorefrontGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestStorefrontGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminFlag(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, true))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestOrderTransitionRequiresAdminFlag(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+uuid.NewString()+"/ship", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, false))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin transition got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestCouponValidateRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}
