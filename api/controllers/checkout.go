package controllers

import (
	"net/http"

	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	checkoutsvc "github.com/heetvora/chronomart-backend/internal/checkout"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/logger"
)

// Checkout settles the caller's cart into a pending order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requesterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutsvc.CheckoutInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
