package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heetvora/chronomart-backend/internal/orders"
	"github.com/heetvora/chronomart-backend/internal/users"
	"github.com/heetvora/chronomart-backend/pkg/config"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/gateway"
	"github.com/heetvora/chronomart-backend/pkg/logger"
	"github.com/heetvora/chronomart-backend/pkg/metrics"
	"github.com/heetvora/chronomart-backend/pkg/money"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

const provider = "gateway"

const maxVersionRetries = 3

// sessionCreator is the gateway surface this service needs.
type sessionCreator interface {
	CreateSession(ctx context.Context, req gateway.SessionRequest) (*gateway.SessionResponse, error)
}

// callbackStore is the processed-marker surface backed by redis.
type callbackStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CallbackKey(orderID, referenceID string) string
}

// Service owns payment sessions and the provider callback. A callback mutates
// order state only when its signature verifies; applying a SUCCESS is
// idempotent across redeliveries.
type Service interface {
	InitiateSession(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, input InitiateInput) (*SessionResult, error)
	HandleCallback(ctx context.Context, input CallbackInput) (*models.Order, error)
}

type service struct {
	ordersSvc  orders.Service
	ordersRepo orders.Repository
	usersRepo  users.Repository
	gateway    sessionCreator
	store      callbackStore
	gwCfg      config.GatewayConfig
	idemCfg    config.IdempotencyConfig
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
	clock      func() time.Time
}

// NewService builds a payments service backed by the provided stack.
func NewService(
	ordersSvc orders.Service,
	ordersRepo orders.Repository,
	usersRepo users.Repository,
	gatewayClient sessionCreator,
	store callbackStore,
	gwCfg config.GatewayConfig,
	idemCfg config.IdempotencyConfig,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if ordersSvc == nil || ordersRepo == nil {
		return nil, fmt.Errorf("orders stack required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if gatewayClient == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if store == nil {
		return nil, fmt.Errorf("callback store required")
	}
	return &service{
		ordersSvc:  ordersSvc,
		ordersRepo: ordersRepo,
		usersRepo:  usersRepo,
		gateway:    gatewayClient,
		store:      store,
		gwCfg:      gwCfg,
		idemCfg:    idemCfg,
		metrics:    checkoutMetrics,
		logg:       logg,
		clock:      time.Now,
	}, nil
}

// InitiateInput carries the optional contact overrides for a session.
type InitiateInput struct {
	Phone string `json:"phoneNo"`
}

// SessionResult is returned to the client to hand off to the hosted page.
type SessionResult struct {
	OrderID    uuid.UUID `json:"orderId"`
	SessionID  string    `json:"sessionId"`
	OrderToken string    `json:"orderToken"`
}

// CallbackInput is the provider's server-to-server notification.
type CallbackInput struct {
	OrderID     string `json:"orderId" validate:"required"`
	OrderAmount string `json:"orderAmount" validate:"required"`
	ReferenceID string `json:"referenceId" validate:"required"`
	TxStatus    string `json:"txStatus" validate:"required"`
	TxMessage   string `json:"txMsg"`
	Signature   string `json:"signature" validate:"required"`
}

func (s *service) InitiateSession(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, input InitiateInput) (*SessionResult, error) {
	order, err := s.ordersSvc.GetByID(ctx, orderID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only pending orders can start a payment").
			WithDetails(map[string]any{"status": order.Status})
	}

	user, err := s.usersRepo.FindByID(ctx, order.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order owner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order owner")
	}

	// Phone precedence: request, then shipping address, then profile.
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		phone = strings.TrimSpace(order.ShippingAddress.Phone)
	}
	if phone == "" {
		phone = strings.TrimSpace(user.Phone)
	}
	if gateway.DigitsOnly(phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required for payment")
	}

	session, err := s.gateway.CreateSession(ctx, gateway.SessionRequest{
		OrderID:       order.ID.String(),
		AmountCents:   order.TotalPriceCents,
		Currency:      "INR",
		CustomerID:    user.ID.String(),
		CustomerEmail: user.Email,
		CustomerPhone: phone,
	})
	if err != nil {
		return nil, err
	}

	// The session is audit data only; order status is untouched until the
	// provider calls back.
	result := &types.PaymentResult{
		Provider:    provider,
		SessionID:   session.SessionID,
		TxStatus:    string(enums.PaymentTxPending),
		OrderAmount: money.FormatAmount(order.TotalPriceCents),
		Raw:         session.Raw,
	}
	if err := s.persistResult(ctx, order.ID, result); err != nil {
		return nil, err
	}

	return &SessionResult{
		OrderID:    order.ID,
		SessionID:  session.SessionID,
		OrderToken: session.OrderToken,
	}, nil
}

func (s *service) HandleCallback(ctx context.Context, input CallbackInput) (*models.Order, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(input.OrderID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}

	if !gateway.VerifyCallback(s.gwCfg.Secret, input.OrderID, input.OrderAmount, input.ReferenceID, input.TxStatus, input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSignature, "callback signature mismatch")
	}

	order, err := s.ordersRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	txStatus := enums.PaymentTxStatus(strings.ToUpper(strings.TrimSpace(input.TxStatus)))
	s.metrics.IncCallback(string(txStatus))

	audit := &types.PaymentResult{
		Provider:    provider,
		ReferenceID: input.ReferenceID,
		TxStatus:    string(txStatus),
		TxMessage:   input.TxMessage,
		OrderAmount: input.OrderAmount,
		Raw:         rawCallback(input),
	}
	if order.PaymentResult != nil && order.PaymentResult.SessionID != "" {
		audit.SessionID = order.PaymentResult.SessionID
	}

	if !txStatus.IsSuccess() {
		// Failures are audit-only; the order stays pending and payable.
		if err := s.persistResult(ctx, order.ID, audit); err != nil {
			return nil, err
		}
		return s.ordersRepo.FindByID(ctx, order.ID)
	}

	if order.IsPaid {
		s.metrics.IncCallbackReplay()
		if s.logg != nil {
			s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "callback replay on paid order ignored")
		}
		return order, nil
	}

	marker := s.store.CallbackKey(order.ID.String(), input.ReferenceID)
	fresh, err := s.store.SetNX(ctx, marker, s.clock().Unix(), s.idemCfg.CallbackTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store callback marker")
	}
	if !fresh {
		s.metrics.IncCallbackReplay()
		return order, nil
	}

	paid, err := s.ordersSvc.MarkPaid(ctx, order.ID, audit)
	if err != nil {
		// Release the marker so a later redelivery can still settle the order.
		_ = s.store.Del(ctx, marker)
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncCallbackReplay()
			return s.ordersRepo.FindByID(ctx, order.ID)
		}
		return nil, err
	}
	return paid, nil
}

// persistResult writes the payment audit snapshot with the version guard,
// retrying when an admin action raced the update.
func (s *service) persistResult(ctx context.Context, orderID uuid.UUID, result *types.PaymentResult) error {
	var lastErr error
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		order, err := s.ordersRepo.FindByID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		affected, err := s.ordersRepo.UpdateGuarded(ctx, orderID, order.Version, map[string]any{
			"payment_result": result,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment result")
		}
		if affected > 0 {
			return nil
		}
		s.metrics.IncVersionConflict("order")
		lastErr = pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
	}
	return lastErr
}

func rawCallback(input CallbackInput) json.RawMessage {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil
	}
	return raw
}
