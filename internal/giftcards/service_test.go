package giftcards

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:giftcards_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.GiftCard{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func TestIssueGeneratesCode(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.Issue(ctx, IssueInput{BalanceCents: 5000_00})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(card.Code) != codeLength {
		t.Fatalf("expected generated %d-char code, got %q", codeLength, card.Code)
	}
	if card.InitialBalanceCents != 5000_00 || card.BalanceCents != 5000_00 {
		t.Fatalf("balances mismatch: %+v", card)
	}
	if !card.IsActive {
		t.Fatal("issued card must be active")
	}
}

func TestIssueWithExplicitCodeRejectsDuplicates(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Issue(ctx, IssueInput{Code: "festive-2026", BalanceCents: 100_00}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err := svc.Issue(ctx, IssueInput{Code: "FESTIVE-2026", BalanceCents: 200_00})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate code, got %v", err)
	}
}

func TestCheckBalanceProjection(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	card, err := svc.Issue(ctx, IssueInput{BalanceCents: 750_00})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	balance, err := svc.CheckBalance(ctx, card.Code)
	if err != nil {
		t.Fatalf("check balance: %v", err)
	}
	if balance.BalanceCents != 750_00 || !balance.IsActive {
		t.Fatalf("unexpected projection: %+v", balance)
	}

	if _, err := svc.CheckBalance(ctx, "MISSING"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRedeemPartialAndDrain(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	card, err := svc.Issue(ctx, IssueInput{BalanceCents: 1000_00})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Order total below the balance takes only what it needs.
	applied, err := svc.Redeem(ctx, nil, card.Code, 400_00, now)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if applied != 400_00 {
		t.Fatalf("expected 40000 applied, got %d", applied)
	}

	// Order total above the balance drains the card.
	applied, err = svc.Redeem(ctx, nil, card.Code, 2000_00, now)
	if err != nil {
		t.Fatalf("redeem remainder: %v", err)
	}
	if applied != 600_00 {
		t.Fatalf("expected 60000 applied, got %d", applied)
	}

	var stored models.GiftCard
	if err := db.Where("id = ?", card.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.BalanceCents != 0 {
		t.Fatalf("expected drained card, balance %d", stored.BalanceCents)
	}
	if stored.InitialBalanceCents != 1000_00 {
		t.Fatal("initial balance must never change")
	}

	if _, err := svc.Redeem(ctx, nil, card.Code, 100_00, now); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource) {
		t.Fatalf("expected insufficient resource on empty card, got %v", err)
	}
}

func TestRedeemRejectsInactiveAndExpired(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	card, err := svc.Issue(ctx, IssueInput{BalanceCents: 500_00})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Deactivate(ctx, card.Code); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Redeem(ctx, nil, card.Code, 100_00, now); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for inactive card, got %v", err)
	}

	past := now.Add(-time.Hour)
	if err := db.Model(&models.GiftCard{}).Where("id = ?", card.ID).
		Updates(map[string]any{"is_active": true, "expires_at": past}).Error; err != nil {
		t.Fatalf("expire: %v", err)
	}
	if _, err := svc.Redeem(ctx, nil, card.Code, 100_00, now); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for expired card, got %v", err)
	}
}

func TestRestoreReturnsBalance(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	card, err := svc.Issue(ctx, IssueInput{BalanceCents: 300_00})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Redeem(ctx, nil, card.Code, 300_00, time.Now()); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	if err := svc.Restore(ctx, nil, card.Code, 300_00); err != nil {
		t.Fatalf("restore: %v", err)
	}

	var stored models.GiftCard
	if err := db.Where("id = ?", card.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.BalanceCents != 300_00 {
		t.Fatalf("expected restored balance, got %d", stored.BalanceCents)
	}

	if err := svc.Restore(ctx, nil, "MISSING", 100_00); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDebitRequiresFullAmount(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	card, err := svc.Issue(ctx, IssueInput{BalanceCents: 100_00})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// A debit above the balance takes nothing, unlike Redeem.
	if _, err := svc.Debit(ctx, card.Code, 150_00, now); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	balance, err := svc.CheckBalance(ctx, card.Code)
	if err != nil {
		t.Fatalf("check balance: %v", err)
	}
	if balance.BalanceCents != 100_00 {
		t.Fatalf("balance must be untouched after failed debit, got %d", balance.BalanceCents)
	}

	debited, err := svc.Debit(ctx, card.Code, 60_00, now)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if debited.BalanceCents != 40_00 {
		t.Fatalf("expected 4000 remaining, got %d", debited.BalanceCents)
	}
}
