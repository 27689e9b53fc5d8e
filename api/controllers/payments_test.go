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
	paymentssvc "github.com/heetvora/chronomart-backend/internal/payments"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
)

type stubPaymentsSvc struct {
	session  *paymentssvc.SessionResult
	order    *models.Order
	err      error
	callback *paymentssvc.CallbackInput
}

func (s *stubPaymentsSvc) InitiateSession(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, input paymentssvc.InitiateInput) (*paymentssvc.SessionResult, error) {
	return s.session, s.err
}

func (s *stubPaymentsSvc) HandleCallback(ctx context.Context, input paymentssvc.CallbackInput) (*models.Order, error) {
	s.callback = &input
	return s.order, s.err
}

func TestInitiatePaymentReturnsSession(t *testing.T) {
	orderID := uuid.New()
	session := &paymentssvc.SessionResult{
		OrderID:    orderID,
		SessionID:  "session-123",
		OrderToken: "token-456",
	}
	handler := InitiatePayment(&stubPaymentsSvc{session: session}, nil)

	body := `{"orderId":"` + orderID.String() + `","phoneNo":"9876543210"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/gateway/initiate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data paymentssvc.SessionResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SessionID != "session-123" {
		t.Fatalf("unexpected session id %q", envelope.Data.SessionID)
	}
}

func TestInitiatePaymentRequiresOrderID(t *testing.T) {
	handler := InitiatePayment(&stubPaymentsSvc{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/gateway/initiate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentCallbackForwardsPayload(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPaid, IsPaid: true}
	svc := &stubPaymentsSvc{order: order}
	handler := PaymentCallback(svc, nil)

	body := `{"orderId":"` + order.ID.String() + `","orderAmount":"2500.00","referenceId":"ref-789","txStatus":"SUCCESS","signature":"sig"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/gateway/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.callback == nil || svc.callback.ReferenceID != "ref-789" {
		t.Fatalf("callback payload not forwarded")
	}

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.IsPaid {
		t.Fatalf("expected paid order in response")
	}
}

func TestPaymentCallbackRejectsBadSignature(t *testing.T) {
	handler := PaymentCallback(&stubPaymentsSvc{err: pkgerrors.New(pkgerrors.CodeInvalidSignature, "signature mismatch")}, nil)

	body := `{"orderId":"` + uuid.NewString() + `","orderAmount":"2500.00","referenceId":"ref-1","txStatus":"SUCCESS","signature":"bad"}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments/gateway/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentCallbackRequiresFields(t *testing.T) {
	handler := PaymentCallback(&stubPaymentsSvc{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/gateway/callback", strings.NewReader(`{"orderId":"abc"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
