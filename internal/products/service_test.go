package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		Name:       "Speedmaster Professional",
		Brand:      "Omega",
		SKU:        "OM-" + uuid.NewString()[:8],
		PriceCents: 650000_00,
		Currency:   "INR",
		Stock:      stock,
		IsActive:   active,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestTakeStockDecrements(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 5, true)

	if err := svc.TakeStock(ctx, nil, product.ID, 3); err != nil {
		t.Fatalf("take stock: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", reloaded.Stock)
	}
}

func TestTakeStockRejectsOversell(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 2, true)

	err := svc.TakeStock(ctx, nil, product.ID, 3)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource) {
		t.Fatalf("unexpected error: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("failed take must not touch stock, got %d", reloaded.Stock)
	}
}

func TestTakeStockRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 10, false)

	err := svc.TakeStock(ctx, nil, product.ID, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource) {
		t.Fatalf("expected unavailable product error, got %v", err)
	}
}

func TestTakeStockUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	err := svc.TakeStock(context.Background(), nil, uuid.New(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTakeStockExactRemainder(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 3, true)

	if err := svc.TakeStock(ctx, nil, product.ID, 3); err != nil {
		t.Fatalf("taking the full remainder should succeed: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", reloaded.Stock)
	}
}

func TestReturnStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 1, true)

	if err := svc.ReturnStock(ctx, nil, product.ID, 4); err != nil {
		t.Fatalf("return stock: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", reloaded.Stock)
	}
}

func TestCreateAndUpdateProduct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Name:       "Submariner Date",
		Brand:      "Rolex",
		SKU:        "RLX-126610",
		PriceCents: 1200000_00,
		Stock:      2,
		Categories: []string{"diver"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.IsActive {
		t.Fatal("new products start active")
	}
	if created.Currency != "INR" {
		t.Fatalf("expected default currency, got %q", created.Currency)
	}

	newPrice := int64(1150000_00)
	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{PriceCents: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceCents != newPrice {
		t.Fatalf("expected updated price, got %d", updated.PriceCents)
	}
	if updated.Name != "Submariner Date" {
		t.Fatalf("patch must not clobber unrelated fields, got %q", updated.Name)
	}

	if _, err := svc.Update(ctx, created.ID, UpdateProductInput{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected empty patch to be rejected, got %v", err)
	}
}

func TestDeactivateKeepsRow(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, db, 1, true)

	if err := svc.Deactivate(ctx, product.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	loaded, err := svc.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("load after deactivate: %v", err)
	}
	if loaded.IsActive {
		t.Fatal("expected product to be inactive")
	}
}

func TestListFiltersByBrandAndActive(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	seedProduct(t, db, 1, true)
	inactive := seedProduct(t, db, 1, false)
	other := seedProduct(t, db, 1, true)
	if err := db.Model(other).Update("brand", "Seiko").Error; err != nil {
		t.Fatalf("rebrand: %v", err)
	}

	rows, total, err := svc.List(ctx, ListFilter{Brand: "Omega", OnlyActive: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected single active Omega, got total=%d rows=%d", total, len(rows))
	}
	if rows[0].ID == inactive.ID {
		t.Fatal("inactive product leaked into active listing")
	}
}
