package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	giftcardssvc "github.com/heetvora/chronomart-backend/internal/giftcards"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/logger"
)

// GetGiftCardBalance is the public balance lookup by code. It exposes the
// remaining balance only, never the initial value.
func GetGiftCardBalance(svc giftcardssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := svc.CheckBalance(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, balance)
	}
}

func AdminIssueGiftCard(svc giftcardssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body giftcardssvc.IssueInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		card, err := svc.Issue(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newGiftCardResponse(card))
	}
}

func AdminListGiftCards(svc giftcardssvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		cards, total, err := svc.List(r.Context(), page, pageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]giftCardResponse, 0, len(cards))
		for i := range cards {
			items = append(items, newGiftCardResponse(&cards[i]))
		}
		responses.WriteSuccess(w, listResponse[giftCardResponse]{
			Items:    items,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

func AdminRedeemGiftCard(svc giftcardssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body redeemGiftCardRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		card, err := svc.Debit(r.Context(), chi.URLParam(r, "code"), body.AmountCents, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newGiftCardResponse(card))
	}
}

func AdminDeactivateGiftCard(svc giftcardssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, err := svc.Deactivate(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newGiftCardResponse(card))
	}
}

type redeemGiftCardRequest struct {
	AmountCents int64 `json:"amountCents" validate:"required,min=1"`
}

type giftCardResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Code                string     `json:"code"`
	InitialBalanceCents int64      `json:"initialBalanceCents"`
	BalanceCents        int64      `json:"balanceCents"`
	ExpiresAt           *time.Time `json:"expiresAt,omitempty"`
	IsActive            bool       `json:"isActive"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func newGiftCardResponse(card *models.GiftCard) giftCardResponse {
	if card == nil {
		return giftCardResponse{}
	}
	return giftCardResponse{
		ID:                  card.ID,
		Code:                card.Code,
		InitialBalanceCents: card.InitialBalanceCents,
		BalanceCents:        card.BalanceCents,
		ExpiresAt:           card.ExpiresAt,
		IsActive:            card.IsActive,
		CreatedAt:           card.CreatedAt,
	}
}
