package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/internal/giftcards"
	products "github.com/heetvora/chronomart-backend/internal/products"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/outbox"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

const maxVersionRetries = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the order state machine. Paid is a one-way latch set by the
// payment callback; shipping and delivery require it; cancel restocks and
// returns gift card value.
type Service interface {
	GetByID(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int64, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.Order, int64, error)

	MarkPaid(ctx context.Context, orderID uuid.UUID, result *types.PaymentResult) (*models.Order, error)
	MarkShipped(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error)
	Refund(ctx context.Context, orderID uuid.UUID, input RefundInput) (*models.Order, error)
}

type service struct {
	repo         Repository
	productsSvc  products.Service
	productsRepo products.Repository
	cardsSvc     giftcards.Service
	cardsRepo    giftcards.Repository
	events       *outbox.Service
	tx           txRunner
	clock        func() time.Time
}

// NewService builds an orders service backed by the provided stack.
func NewService(
	repo Repository,
	productsSvc products.Service,
	productsRepo products.Repository,
	cardsSvc giftcards.Service,
	cardsRepo giftcards.Repository,
	events *outbox.Service,
	tx txRunner,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productsSvc == nil || productsRepo == nil {
		return nil, fmt.Errorf("products stack required")
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
		repo:         repo,
		productsSvc:  productsSvc,
		productsRepo: productsRepo,
		cardsSvc:     cardsSvc,
		cardsRepo:    cardsRepo,
		events:       events,
		tx:           tx,
		clock:        time.Now,
	}, nil
}

// RefundInput captures an admin refund request. A zero amount refunds the
// full order total.
type RefundInput struct {
	AmountCents int64  `json:"amountCents" validate:"min=0"`
	Reason      string `json:"reason" validate:"required,min=3"`
}

// EventPayload is the data carried by order lifecycle outbox events.
type EventPayload struct {
	OrderID         uuid.UUID         `json:"orderId"`
	UserID          uuid.UUID         `json:"userId"`
	Status          enums.OrderStatus `json:"status"`
	TotalPriceCents int64             `json:"totalPriceCents"`
	RefundCents     int64             `json:"refundCents,omitempty"`
}

func (s *service) GetByID(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int64, error) {
	rows, total, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, total, nil
}

func (s *service) ListAll(ctx context.Context, filter ListFilter) ([]models.Order, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, total, nil
}

func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, result *types.PaymentResult) (*models.Order, error) {
	return s.transition(ctx, orderID, func(order *models.Order) (map[string]any, *outbox.DomainEvent, error) {
		if order.IsPaid {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
		}
		if order.Status != enums.OrderStatusPending {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "only pending orders can be paid").
				WithDetails(map[string]any{"status": order.Status})
		}

		now := s.clock()
		updates := map[string]any{
			"status":  enums.OrderStatusPaid,
			"is_paid": true,
			"paid_at": now,
		}
		if result != nil {
			updates["payment_result"] = result
		}
		event := s.event(enums.OutboxEventOrderPaid, order, enums.OrderStatusPaid, 0)
		return updates, &event, nil
	})
}

func (s *service) MarkShipped(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, func(order *models.Order) (map[string]any, *outbox.DomainEvent, error) {
		if !order.IsPaid {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "unpaid orders cannot ship")
		}
		if order.Status != enums.OrderStatusPaid {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "only paid orders can ship").
				WithDetails(map[string]any{"status": order.Status})
		}
		return map[string]any{"status": enums.OrderStatusShipped}, nil, nil
	})
}

func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, func(order *models.Order) (map[string]any, *outbox.DomainEvent, error) {
		if !order.IsPaid {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "unpaid orders cannot be delivered")
		}
		if order.Status != enums.OrderStatusShipped {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "only shipped orders can be delivered").
				WithDetails(map[string]any{"status": order.Status})
		}
		return map[string]any{
			"status":       enums.OrderStatusDelivered,
			"is_delivered": true,
			"delivered_at": s.clock(),
		}, nil, nil
	})
}

func (s *service) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	return s.transitionFull(ctx, orderID, func(tx *gorm.DB, order *models.Order) (map[string]any, *outbox.DomainEvent, error) {
		if !isAdmin && order.UserID != requesterID {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
		}
		switch order.Status {
		case enums.OrderStatusPending, enums.OrderStatusPaid, enums.OrderStatusShipped:
		default:
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		// Cancelled stock goes back on the shelf in the same transaction.
		txProducts := s.productsRepo.WithTx(tx)
		for _, item := range order.Items {
			if err := s.productsSvc.ReturnStock(ctx, txProducts, item.ProductID, item.Quantity); err != nil {
				return nil, nil, err
			}
		}
		if order.GiftCardCode != "" && order.GiftCardCents > 0 {
			if err := s.cardsSvc.Restore(ctx, s.cardsRepo.WithTx(tx), order.GiftCardCode, order.GiftCardCents); err != nil {
				return nil, nil, err
			}
		}

		event := s.event(enums.OutboxEventOrderCancelled, order, enums.OrderStatusCancelled, 0)
		return map[string]any{"status": enums.OrderStatusCancelled}, &event, nil
	})
}

func (s *service) Refund(ctx context.Context, orderID uuid.UUID, input RefundInput) (*models.Order, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund reason is required")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be non-negative")
	}

	return s.transition(ctx, orderID, func(order *models.Order) (map[string]any, *outbox.DomainEvent, error) {
		if order.IsRefunded {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already refunded")
		}
		if !order.IsPaid {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "only paid orders can be refunded")
		}

		amount := input.AmountCents
		if amount == 0 {
			amount = order.TotalPriceCents
		}
		if amount > order.TotalPriceCents {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "refund exceeds order total").
				WithDetails(map[string]any{
					"totalPriceCents": order.TotalPriceCents,
					"requestedCents":  amount,
				})
		}

		event := s.event(enums.OutboxEventOrderRefunded, order, enums.OrderStatusRefunded, amount)
		return map[string]any{
			"status":              enums.OrderStatusRefunded,
			"is_refunded":         true,
			"refunded_at":         s.clock(),
			"refund_amount_cents": amount,
			"refund_reason":       strings.TrimSpace(input.Reason),
		}, &event, nil
	})
}

// transition runs a guard-and-update cycle that needs no extra side effects
// beyond the order row and an optional event.
func (s *service) transition(ctx context.Context, orderID uuid.UUID, decide func(order *models.Order) (map[string]any, *outbox.DomainEvent, error)) (*models.Order, error) {
	return s.transitionFull(ctx, orderID, func(_ *gorm.DB, order *models.Order) (map[string]any, *outbox.DomainEvent, error) {
		return decide(order)
	})
}

// transitionFull reloads the order, lets decide compute the guarded update and
// side effects inside the transaction, and retries on version misses.
func (s *service) transitionFull(ctx context.Context, orderID uuid.UUID, decide func(tx *gorm.DB, order *models.Order) (map[string]any, *outbox.DomainEvent, error)) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		conflict := false
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			order, err := s.load(ctx, repo, orderID)
			if err != nil {
				return err
			}

			updates, event, err := decide(tx, order)
			if err != nil {
				return err
			}

			affected, err := repo.UpdateGuarded(ctx, order.ID, order.Version, updates)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
			}
			if affected == 0 {
				conflict = true
				return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
			}

			if event != nil {
				if err := s.events.Emit(ctx, tx, *event); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
				}
			}
			return nil
		})
		if err == nil {
			return s.load(ctx, s.repo, orderID)
		}
		if !conflict {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) load(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) event(eventType enums.OutboxEventType, order *models.Order, status enums.OrderStatus, refundCents int64) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		OccurredAt:    s.clock(),
		Data: EventPayload{
			OrderID:         order.ID,
			UserID:          order.UserID,
			Status:          status,
			TotalPriceCents: order.TotalPriceCents,
			RefundCents:     refundCents,
		},
	}
}
