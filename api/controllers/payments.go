package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/middleware"
	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	paymentssvc "github.com/heetvora/chronomart-backend/internal/payments"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/logger"
)

// InitiatePayment opens a hosted payment session for a pending order.
func InitiatePayment(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.InitiateSession(r.Context(), body.OrderID, userID, middleware.IsAdminFromContext(r.Context()), paymentssvc.InitiateInput{
			Phone: body.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PaymentCallback is the provider's server-to-server notification. It is
// authenticated by signature, not by bearer token.
func PaymentCallback(svc paymentssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body paymentssvc.CallbackInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.HandleCallback(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type initiatePaymentRequest struct {
	OrderID uuid.UUID `json:"orderId" validate:"required"`
	Phone   string    `json:"phoneNo"`
}
