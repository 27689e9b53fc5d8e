package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/middleware"
	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	orderssvc "github.com/heetvora/chronomart-backend/internal/orders"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/enums"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/logger"
	"github.com/heetvora/chronomart-backend/pkg/types"
)

// ListMyOrders returns the caller's order history, newest first.
func ListMyOrders(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, total, err := svc.ListMine(r.Context(), userID, page, pageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders, total, page, pageSize))
	}
}

// GetOrder fetches one order; non-admin callers only see their own.
func GetOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetByID(r.Context(), orderID, userID, middleware.IsAdminFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminListOrders lists all orders with optional status and user filters.
func AdminListOrders(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "pageSize", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := orderssvc.ListFilter{Page: page, PageSize: pageSize}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status"))
				return
			}
			filter.Status = status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
			userID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user id"))
				return
			}
			filter.UserID = userID
		}

		orders, total, err := svc.ListAll(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(orders, total, page, pageSize))
	}
}

// AdminMarkPaid records an out-of-band settlement, e.g. a bank transfer.
func AdminMarkPaid(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkPaid(r.Context(), orderID, &types.PaymentResult{
			Provider: "manual",
			TxStatus: string(enums.PaymentTxSuccess),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func AdminMarkShipped(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkShipped(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func AdminMarkDelivered(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkDelivered(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminCancelOrder cancels an order, restocking its line items.
func AdminCancelOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), orderID, userID, true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func AdminRefundOrder(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body orderssvc.RefundInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Refund(r.Context(), orderID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type orderResponse struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"`

	Items           []orderItemResponse `json:"items"`
	ShippingAddress types.Address       `json:"shippingAddress"`
	PaymentMethod   string              `json:"paymentMethod"`

	ItemsPriceCents    int64  `json:"itemsPriceCents"`
	TaxPriceCents      int64  `json:"taxPriceCents"`
	ShippingPriceCents int64  `json:"shippingPriceCents"`
	DiscountCents      int64  `json:"discountCents"`
	GiftCardCents      int64  `json:"giftCardCents"`
	TotalPriceCents    int64  `json:"totalPriceCents"`
	CouponCode         string `json:"couponCode,omitempty"`
	GiftCardCode       string `json:"giftCardCode,omitempty"`

	IsPaid      bool       `json:"isPaid"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	IsDelivered bool       `json:"isDelivered"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`

	IsRefunded        bool       `json:"isRefunded"`
	RefundedAt        *time.Time `json:"refundedAt,omitempty"`
	RefundAmountCents int64      `json:"refundAmountCents,omitempty"`
	RefundReason      string     `json:"refundReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type orderItemResponse struct {
	ProductID  uuid.UUID `json:"productId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"priceCents"`
	Image      string    `json:"image,omitempty"`
	Quantity   int       `json:"quantity"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID:  item.ProductID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Image:      item.Image,
			Quantity:   item.Quantity,
		})
	}
	return orderResponse{
		ID:                 order.ID,
		UserID:             order.UserID,
		Status:             string(order.Status),
		Items:              items,
		ShippingAddress:    order.ShippingAddress,
		PaymentMethod:      order.PaymentMethod,
		ItemsPriceCents:    order.ItemsPriceCents,
		TaxPriceCents:      order.TaxPriceCents,
		ShippingPriceCents: order.ShippingPriceCents,
		DiscountCents:      order.DiscountCents,
		GiftCardCents:      order.GiftCardCents,
		TotalPriceCents:    order.TotalPriceCents,
		CouponCode:         order.CouponCode,
		GiftCardCode:       order.GiftCardCode,
		IsPaid:             order.IsPaid,
		PaidAt:             order.PaidAt,
		IsDelivered:        order.IsDelivered,
		DeliveredAt:        order.DeliveredAt,
		IsRefunded:         order.IsRefunded,
		RefundedAt:         order.RefundedAt,
		RefundAmountCents:  order.RefundAmountCents,
		RefundReason:       order.RefundReason,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}

func newOrderListResponse(orders []models.Order, total int64, page, pageSize int) listResponse[orderResponse] {
	items := make([]orderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, newOrderResponse(&orders[i]))
	}
	return listResponse[orderResponse]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
