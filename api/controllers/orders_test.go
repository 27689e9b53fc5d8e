package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/middleware"
	orderssvc "github.com/heetvora/chronomart-backend/internal/orders"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

type stubOrdersSvc struct {
	order  *models.Order
	err    error
	result *types.PaymentResult
	refund *orderssvc.RefundInput
}

func (s *stubOrdersSvc) GetByID(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersSvc) ListMine(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Order, int64, error) {
	return []models.Order{}, 0, s.err
}

func (s *stubOrdersSvc) ListAll(ctx context.Context, filter orderssvc.ListFilter) ([]models.Order, int64, error) {
	return []models.Order{}, 0, s.err
}

func (s *stubOrdersSvc) MarkPaid(ctx context.Context, orderID uuid.UUID, result *types.PaymentResult) (*models.Order, error) {
	s.result = result
	return s.order, s.err
}

func (s *stubOrdersSvc) MarkShipped(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersSvc) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersSvc) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrdersSvc) Refund(ctx context.Context, orderID uuid.UUID, input orderssvc.RefundInput) (*models.Order, error) {
	s.refund = &input
	return s.order, s.err
}

func orderRequest(method, target, param, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", param)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, userID.String())
	}
	return req.WithContext(ctx)
}

func TestGetOrderRejectsMalformedID(t *testing.T) {
	handler := GetOrder(&stubOrdersSvc{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(http.MethodGet, "/api/orders/not-a-uuid", "not-a-uuid", "", uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetOrderMapsForeignOrderToNotFound(t *testing.T) {
	handler := GetOrder(&stubOrdersSvc{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}, nil)

	orderID := uuid.NewString()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(http.MethodGet, "/api/orders/"+orderID, orderID, "", uuid.New()))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminMarkPaidRecordsManualSettlement(t *testing.T) {
	svc := &stubOrdersSvc{order: &models.Order{ID: uuid.New(), Status: enums.OrderStatusPaid, IsPaid: true}}
	handler := AdminMarkPaid(svc, nil)

	orderID := uuid.NewString()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(http.MethodPut, "/api/orders/"+orderID+"/pay", orderID, "", uuid.Nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.result == nil || svc.result.Provider != "manual" {
		t.Fatalf("expected manual settlement result, got %+v", svc.result)
	}
	if svc.result.TxStatus != string(enums.PaymentTxSuccess) {
		t.Fatalf("unexpected tx status %q", svc.result.TxStatus)
	}
}

func TestAdminRefundOrderRequiresReason(t *testing.T) {
	handler := AdminRefundOrder(&stubOrdersSvc{}, nil)

	orderID := uuid.NewString()
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(http.MethodPut, "/api/orders/"+orderID+"/refund", orderID, `{"amountCents":1000}`, uuid.Nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminRefundOrderForwardsInput(t *testing.T) {
	svc := &stubOrdersSvc{order: &models.Order{ID: uuid.New(), Status: enums.OrderStatusRefunded}}
	handler := AdminRefundOrder(svc, nil)

	orderID := uuid.NewString()
	body := `{"amountCents":5000,"reason":"customer return"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(http.MethodPut, "/api/orders/"+orderID+"/refund", orderID, body, uuid.Nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.refund == nil || svc.refund.AmountCents != 5000 {
		t.Fatalf("refund input not forwarded: %+v", svc.refund)
	}
}
