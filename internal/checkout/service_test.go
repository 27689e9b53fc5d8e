package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	cartpkg "github.com/heetvora/chronomart-backend/internal/cart"
	"github.com/heetvora/chronomart-backend/internal/coupons"
	"github.com/heetvora/chronomart-backend/internal/giftcards"
	"github.com/heetvora/chronomart-backend/internal/orders"
	products "github.com/heetvora/chronomart-backend/internal/products"
	"github.com/heetvora/chronomart-backend/internal/users"
	"github.com/heetvora/chronomart-backend/pkg/config"
	dbpkg "github.com/heetvora/chronomart-backend/pkg/db"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/outbox"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.GiftCard{},
		&models.Order{},
		&models.OrderItem{},
		&models.OutboxEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	usersSvc, err := users.NewService(
		users.NewRepository(db),
		config.JWTConfig{Secret: "test-secret", Issuer: "chronomart-test", ExpirationHours: 1},
		config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	)
	if err != nil {
		t.Fatalf("users service: %v", err)
	}

	productsRepo := products.NewRepository(db)
	productsSvc, err := products.NewService(productsRepo)
	if err != nil {
		t.Fatalf("products service: %v", err)
	}
	couponsRepo := coupons.NewRepository(db)
	couponsSvc, err := coupons.NewService(couponsRepo)
	if err != nil {
		t.Fatalf("coupons service: %v", err)
	}
	cardsRepo := giftcards.NewRepository(db)
	cardsSvc, err := giftcards.NewService(cardsRepo)
	if err != nil {
		t.Fatalf("gift cards service: %v", err)
	}

	svc, err := NewService(
		cartpkg.NewRepository(db),
		usersSvc,
		productsSvc,
		productsRepo,
		couponsSvc,
		couponsRepo,
		cardsSvc,
		cardsRepo,
		orders.NewRepository(db),
		outbox.NewService(outbox.NewRepository(db), nil),
		dbpkg.FromConn(db),
		nil,
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, withAddress bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: "x",
		FirstName:    "Heet",
	}
	if withAddress {
		user.StreetAddress = "12 Marine Drive"
		user.City = "Mumbai"
		user.PostalCode = "400002"
		user.Country = "IN"
		user.Phone = "9876543210"
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, priceCents int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:         uuid.New(),
		Name:       "Nautilus 5711",
		Brand:      "Patek Philippe",
		SKU:        "SKU-" + uuid.NewString()[:8],
		PriceCents: priceCents,
		Currency:   "INR",
		Stock:      stock,
		IsActive:   true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedCart(t *testing.T, db *gorm.DB, userID uuid.UUID, lines map[*models.Product]int) *models.Cart {
	t.Helper()
	cart := &models.Cart{ID: uuid.New(), UserID: userID}
	var subtotal int64
	count := 0
	for product, qty := range lines {
		cart.Items = append(cart.Items, models.CartItem{
			ID:         uuid.New(),
			CartID:     cart.ID,
			ProductID:  product.ID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Quantity:   qty,
		})
		subtotal += product.PriceCents * int64(qty)
		count += qty
	}
	cart.SubtotalCents = subtotal
	cart.ItemCount = count
	if err := db.Create(cart).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return cart
}

func validInput() CheckoutInput {
	return CheckoutInput{PaymentMethod: "gateway"}
}

func TestCheckoutHappyPath(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, true)
	watch := seedProduct(t, db, 2000_00, 5)
	strap := seedProduct(t, db, 500_00, 5)
	seedCart(t, db, user.ID, map[*models.Product]int{watch: 2, strap: 1})

	input := validInput()
	input.ShippingPriceCents = 50_00
	input.TaxPriceCents = 10_00

	order, err := svc.Checkout(ctx, user.ID, input)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	wantItems := int64(2*2000_00 + 500_00)
	if order.ItemsPriceCents != wantItems {
		t.Fatalf("items price mismatch: %d", order.ItemsPriceCents)
	}
	if order.TotalPriceCents != wantItems+50_00+10_00 {
		t.Fatalf("total mismatch: %d", order.TotalPriceCents)
	}
	if order.Status != enums.OrderStatusPending || order.IsPaid {
		t.Fatalf("new order must be pending and unpaid: %+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected two lines, got %d", len(order.Items))
	}
	if order.ShippingAddress.City != "Mumbai" {
		t.Fatalf("expected merged default address, got %+v", order.ShippingAddress)
	}

	var storedWatch models.Product
	if err := db.Where("id = ?", watch.ID).First(&storedWatch).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if storedWatch.Stock != 3 {
		t.Fatalf("expected stock 3 after checkout, got %d", storedWatch.Stock)
	}

	var cart models.Cart
	if err := db.Preload("Items").Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if len(cart.Items) != 0 || cart.SubtotalCents != 0 || cart.ItemCount != 0 {
		t.Fatalf("cart must be cleared: %+v", cart)
	}

	var events []models.OutboxEvent
	if err := db.Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	if len(events) != 1 || events[0].EventType != enums.OutboxEventOrderCreated {
		t.Fatalf("expected single order.created event, got %+v", events)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, true)

	if _, err := svc.Checkout(ctx, user.ID, validInput()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing cart, got %v", err)
	}

	seedCart(t, db, user.ID, nil)
	if _, err := svc.Checkout(ctx, user.ID, validInput()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestCheckoutIncompleteAddress(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, false)
	product := seedProduct(t, db, 100_00, 5)
	seedCart(t, db, user.ID, map[*models.Product]int{product: 1})

	input := validInput()
	input.ShippingAddress = types.Address{City: "Mumbai"}

	_, err := svc.Checkout(ctx, user.ID, input)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for incomplete address, got %v", err)
	}
}

func TestCheckoutOversellRollsBackEverything(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, true)
	plenty := seedProduct(t, db, 100_00, 10)
	scarce := seedProduct(t, db, 200_00, 1)
	seedCart(t, db, user.ID, map[*models.Product]int{plenty: 2, scarce: 3})

	_, err := svc.Checkout(ctx, user.ID, validInput())
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// The earlier decrement on the plentiful product must be rolled back.
	var stored models.Product
	if err := db.Where("id = ?", plenty.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.Stock != 10 {
		t.Fatalf("expected untouched stock 10, got %d", stored.Stock)
	}

	var cart models.Cart
	if err := db.Preload("Items").Where("user_id = ?", user.ID).First(&cart).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("cart must survive a failed checkout: %+v", cart.Items)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatal("no order may exist after a failed checkout")
	}
}

func TestCheckoutLastUnitGoesToOneBuyer(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	scarce := seedProduct(t, db, 300_00, 1)

	first := seedUser(t, db, true)
	second := seedUser(t, db, true)
	seedCart(t, db, first.ID, map[*models.Product]int{scarce: 1})
	seedCart(t, db, second.ID, map[*models.Product]int{scarce: 1})

	if _, err := svc.Checkout(ctx, first.ID, validInput()); err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	if _, err := svc.Checkout(ctx, second.ID, validInput()); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource) {
		t.Fatalf("expected insufficient stock for second buyer, got %v", err)
	}

	var stored models.Product
	if err := db.Where("id = ?", scarce.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.Stock != 0 {
		t.Fatalf("stock must end at zero, got %d", stored.Stock)
	}
}

func TestCheckoutAppliesCouponAndGiftCard(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, true)
	product := seedProduct(t, db, 10000_00, 5)
	seedCart(t, db, user.ID, map[*models.Product]int{product: 1})

	coupon := &models.Coupon{
		ID:           uuid.New(),
		Code:         "TENOFF",
		DiscountType: enums.DiscountTypePercent,
		Value:        10,
		IsActive:     true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
	card := &models.GiftCard{
		ID:                  uuid.New(),
		Code:                "GCHECKOUT123",
		InitialBalanceCents: 2000_00,
		BalanceCents:        2000_00,
		IsActive:            true,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	input := validInput()
	input.CouponCode = "tenoff"
	input.GiftCardCode = "gcheckout123"

	order, err := svc.Checkout(ctx, user.ID, input)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// 10000.00 - 10% = 9000.00, minus full 2000.00 card balance = 7000.00.
	if order.DiscountCents != 1000_00 {
		t.Fatalf("discount mismatch: %d", order.DiscountCents)
	}
	if order.GiftCardCents != 2000_00 {
		t.Fatalf("gift card applied mismatch: %d", order.GiftCardCents)
	}
	if order.TotalPriceCents != 7000_00 {
		t.Fatalf("total mismatch: %d", order.TotalPriceCents)
	}
	if order.CouponCode != "TENOFF" || order.GiftCardCode != "GCHECKOUT123" {
		t.Fatalf("codes must be stored normalized: %+v", order)
	}

	var stored models.GiftCard
	if err := db.Where("id = ?", card.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload card: %v", err)
	}
	if stored.BalanceCents != 0 {
		t.Fatalf("expected drained card, got %d", stored.BalanceCents)
	}
}

func TestCheckoutGiftCardCoversTotal(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, true)
	product := seedProduct(t, db, 500_00, 5)
	seedCart(t, db, user.ID, map[*models.Product]int{product: 1})

	card := &models.GiftCard{
		ID:                  uuid.New(),
		Code:                "GCBIG9999",
		InitialBalanceCents: 5000_00,
		BalanceCents:        5000_00,
		IsActive:            true,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	input := validInput()
	input.GiftCardCode = card.Code

	order, err := svc.Checkout(ctx, user.ID, input)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.TotalPriceCents != 0 {
		t.Fatalf("expected zero total, got %d", order.TotalPriceCents)
	}
	if order.GiftCardCents != 500_00 {
		t.Fatalf("card must cover only the total, applied %d", order.GiftCardCents)
	}

	var stored models.GiftCard
	if err := db.Where("id = ?", card.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload card: %v", err)
	}
	if stored.BalanceCents != 4500_00 {
		t.Fatalf("expected remaining balance 450000, got %d", stored.BalanceCents)
	}
}

func TestCheckoutRevalidatesCouponAtCommit(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, true)
	product := seedProduct(t, db, 1000_00, 5)
	seedCart(t, db, user.ID, map[*models.Product]int{product: 1})

	expired := time.Now().Add(-time.Hour)
	coupon := &models.Coupon{
		ID:           uuid.New(),
		Code:         "STALE",
		DiscountType: enums.DiscountTypeFixed,
		Value:        100_00,
		ExpiresAt:    &expired,
		IsActive:     true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	input := validInput()
	input.CouponCode = "STALE"

	if _, err := svc.Checkout(ctx, user.ID, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for expired coupon, got %v", err)
	}

	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orderCount != 0 {
		t.Fatal("failed coupon validation must abort the settlement")
	}

	var stored models.Product
	if err := db.Where("id = ?", product.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if stored.Stock != 5 {
		t.Fatalf("stock must be rolled back, got %d", stored.Stock)
	}
}

func TestCheckoutRejectsNegativeShippingAndTax(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	user := seedUser(t, db, true)

	input := validInput()
	input.ShippingPriceCents = -1
	if _, err := svc.Checkout(ctx, user.ID, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative shipping, got %v", err)
	}

	input = validInput()
	input.TaxPriceCents = -1
	if _, err := svc.Checkout(ctx, user.ID, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative tax, got %v", err)
	}
}
