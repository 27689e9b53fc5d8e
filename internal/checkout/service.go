package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartpkg "github.com/heetvora/chronomart-backend/internal/cart"
	"github.com/heetvora/chronomart-backend/internal/coupons"
	"github.com/heetvora/chronomart-backend/internal/giftcards"
	"github.com/heetvora/chronomart-backend/internal/orders"
	products "github.com/heetvora/chronomart-backend/internal/products"
	"github.com/heetvora/chronomart-backend/internal/users"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/metrics"
	"github.com/heetvora/chronomart-backend/pkg/outbox"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service settles a cart into an order. The whole settlement runs in one
// transaction: stock decrements, discount pricing, gift card redemption,
// order creation and cart clearing commit or roll back together.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*models.Order, error)
}

// CheckoutInput is the client payload. Any amounts the client supplies are
// display hints; the order total is derived server-side.
type CheckoutInput struct {
	ShippingAddress    types.Address `json:"shippingAddress"`
	PaymentMethod      string        `json:"paymentMethod" validate:"required"`
	CouponCode         string        `json:"couponCode"`
	GiftCardCode       string        `json:"giftCardCode"`
	ShippingPriceCents int64         `json:"shippingPriceCents" validate:"min=0"`
	TaxPriceCents      int64         `json:"taxPriceCents" validate:"min=0"`
}

type service struct {
	cartRepo     cartpkg.Repository
	usersSvc     users.Service
	productsSvc  products.Service
	productsRepo products.Repository
	couponsSvc   coupons.Service
	couponsRepo  coupons.Repository
	cardsSvc     giftcards.Service
	cardsRepo    giftcards.Repository
	ordersRepo   orders.Repository
	events       *outbox.Service
	tx           txRunner
	metrics      *metrics.CheckoutMetrics
	clock        func() time.Time
}

// NewService builds the checkout orchestrator.
func NewService(
	cartRepo cartpkg.Repository,
	usersSvc users.Service,
	productsSvc products.Service,
	productsRepo products.Repository,
	couponsSvc coupons.Service,
	couponsRepo coupons.Repository,
	cardsSvc giftcards.Service,
	cardsRepo giftcards.Repository,
	ordersRepo orders.Repository,
	events *outbox.Service,
	tx txRunner,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if cartRepo == nil || ordersRepo == nil {
		return nil, fmt.Errorf("cart and orders repositories required")
	}
	if usersSvc == nil {
		return nil, fmt.Errorf("users service required")
	}
	if productsSvc == nil || productsRepo == nil {
		return nil, fmt.Errorf("products stack required")
	}
	if couponsSvc == nil || couponsRepo == nil {
		return nil, fmt.Errorf("coupons stack required")
	}
	if cardsSvc == nil || cardsRepo == nil {
		return nil, fmt.Errorf("gift cards stack required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		cartRepo:     cartRepo,
		usersSvc:     usersSvc,
		productsSvc:  productsSvc,
		productsRepo: productsRepo,
		couponsSvc:   couponsSvc,
		couponsRepo:  couponsRepo,
		cardsSvc:     cardsSvc,
		cardsRepo:    cardsRepo,
		ordersRepo:   ordersRepo,
		events:       events,
		tx:           tx,
		metrics:      checkoutMetrics,
		clock:        time.Now,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*models.Order, error) {
	started := s.clock()
	order, err := s.checkout(ctx, userID, input)
	if err != nil {
		s.metrics.ObserveCheckout("failed", s.clock().Sub(started))
		return nil, err
	}
	s.metrics.ObserveCheckout("ok", s.clock().Sub(started))
	return order, nil
}

func (s *service) checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*models.Order, error) {
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if input.ShippingPriceCents < 0 || input.TaxPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping and tax must be non-negative")
	}

	user, err := s.usersSvc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	address := input.ShippingAddress.MergeOver(s.usersSvc.DefaultAddress(user))
	if missing := address.RequiredFields(); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	now := s.clock()
	var order *models.Order

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cart, err := s.cartRepo.WithTx(tx).FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		// Reserve stock line by line; a failed decrement aborts the whole
		// settlement and rolls back earlier reservations.
		txProducts := s.productsRepo.WithTx(tx)
		for _, item := range cart.Items {
			if err := s.productsSvc.TakeStock(ctx, txProducts, item.ProductID, item.Quantity); err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientResource) {
					s.metrics.IncOversellRejected()
				}
				return err
			}
		}

		var itemsPrice int64
		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			itemsPrice += item.PriceCents * int64(item.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:  item.ProductID,
				Name:       item.Name,
				PriceCents: item.PriceCents,
				Image:      item.Image,
				Quantity:   item.Quantity,
			})
		}

		// Discounts are re-derived here from the stores; nothing the client
		// sent about pricing is trusted.
		var discount int64
		var couponCode string
		if strings.TrimSpace(input.CouponCode) != "" {
			coupon, d, err := s.couponsSvc.Validate(ctx, s.couponsRepo.WithTx(tx), input.CouponCode, itemsPrice, now)
			if err != nil {
				return err
			}
			discount = d
			couponCode = coupon.Code
		}

		total := itemsPrice + input.ShippingPriceCents + input.TaxPriceCents - discount
		if total < 0 {
			total = 0
		}

		var giftCardApplied int64
		var giftCardCode string
		if strings.TrimSpace(input.GiftCardCode) != "" && total > 0 {
			applied, err := s.cardsSvc.Redeem(ctx, s.cardsRepo.WithTx(tx), input.GiftCardCode, total, now)
			if err != nil {
				return err
			}
			giftCardApplied = applied
			giftCardCode = giftcards.NormalizeCode(input.GiftCardCode)
			total -= applied
		}

		order = &models.Order{
			UserID:             userID,
			Items:              orderItems,
			ShippingAddress:    address,
			PaymentMethod:      strings.TrimSpace(input.PaymentMethod),
			ItemsPriceCents:    itemsPrice,
			TaxPriceCents:      input.TaxPriceCents,
			ShippingPriceCents: input.ShippingPriceCents,
			DiscountCents:      discount,
			GiftCardCents:      giftCardApplied,
			TotalPriceCents:    total,
			CouponCode:         couponCode,
			GiftCardCode:       giftCardCode,
			Status:             enums.OrderStatusPending,
		}
		if _, err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		// Clearing the cart is guarded by its version; a concurrent cart
		// mutation aborts the settlement rather than checking out stale lines.
		txCart := s.cartRepo.WithTx(tx)
		if err := txCart.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		affected, err := txCart.BumpVersion(ctx, cart.ID, cart.Version, 0, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset cart totals")
		}
		if affected == 0 {
			s.metrics.IncVersionConflict("cart")
			return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified during checkout")
		}

		event := outbox.DomainEvent{
			EventType:     enums.OutboxEventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    now,
			Data: orders.EventPayload{
				OrderID:         order.ID,
				UserID:          order.UserID,
				Status:          order.Status,
				TotalPriceCents: order.TotalPriceCents,
			},
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
