package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	products "github.com/heetvora/chronomart-backend/internal/products"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
)

// maxVersionRetries bounds the optimistic concurrency loop; a hot cart under
// real contention settles within a couple of rounds.
const maxVersionRetries = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes cart mutations. Every write recomputes the denormalized
// totals so subtotal == sum(price*qty) and itemCount == sum(qty) hold after
// each operation.
type Service interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, productRepo products.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, products: productRepo, tx: tx}, nil
}

func (s *service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{UserID: userID})
	if err != nil {
		// Lost a create race; the winner's cart is the one we want.
		if existing, findErr := s.repo.FindByUser(ctx, userID); findErr == nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(repo Repository, cart *models.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				wanted := cart.Items[i].Quantity + quantity
				if wanted > product.Stock {
					return insufficientStock(product, wanted)
				}
				cart.Items[i].Quantity = wanted
				return repo.UpdateItemQuantity(ctx, cart.Items[i].ID, wanted)
			}
		}
		if quantity > product.Stock {
			return insufficientStock(product, quantity)
		}
		item := models.CartItem{
			CartID:     cart.ID,
			ProductID:  productID,
			Name:       product.Name,
			PriceCents: product.PriceCents,
			Image:      firstImage(product),
			Quantity:   quantity,
		}
		cart.Items = append(cart.Items, item)
		return repo.UpsertItem(ctx, &cart.Items[len(cart.Items)-1])
	})
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, insufficientStock(product, quantity)
	}

	return s.mutate(ctx, userID, func(repo Repository, cart *models.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				// Quantity edits refresh the snapshot to the live product.
				cart.Items[i].Quantity = quantity
				cart.Items[i].Name = product.Name
				cart.Items[i].PriceCents = product.PriceCents
				cart.Items[i].Image = firstImage(product)
				return repo.UpsertItem(ctx, &cart.Items[i])
			}
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	})
}

// RemoveItem is idempotent; an absent line is not an error.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, userID, func(repo Repository, cart *models.Cart) error {
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				itemID := cart.Items[i].ID
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return repo.DeleteItem(ctx, itemID)
			}
		}
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := s.mutate(ctx, userID, func(repo Repository, cart *models.Cart) error {
		cart.Items = nil
		return repo.DeleteItems(ctx, cart.ID)
	})
	return err
}

// mutate runs fn inside a transaction guarded by the cart version, retrying
// on version misses with a fresh snapshot each round.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(repo Repository, cart *models.Cart) error) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		conflict := false
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			cart, err := repo.FindByUser(ctx, userID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
				}
				cart, err = repo.Create(ctx, &models.Cart{UserID: userID})
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
				}
			}

			if err := fn(repo, cart); err != nil {
				return err
			}

			subtotal, count := computeTotals(cart.Items)
			affected, err := repo.BumpVersion(ctx, cart.ID, cart.Version, subtotal, count)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart totals")
			}
			if affected == 0 {
				conflict = true
				return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently")
			}
			return nil
		})
		if err == nil {
			return s.reload(ctx, userID)
		}
		if !conflict {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return cart, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func insufficientStock(product *models.Product, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientResource, "insufficient stock").
		WithDetails(map[string]any{
			"productId": product.ID,
			"requested": requested,
			"available": product.Stock,
		})
}

func firstImage(product *models.Product) string {
	if len(product.Images) > 0 {
		return product.Images[0]
	}
	return ""
}

func computeTotals(items []models.CartItem) (subtotalCents int64, itemCount int) {
	for _, item := range items {
		subtotalCents += item.PriceCents * int64(item.Quantity)
		itemCount += item.Quantity
	}
	return subtotalCents, itemCount
}
