package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	policiessvc "github.com/heetvora/chronomart-backend/internal/policies"
	"github.com/heetvora/chronomart-backend/pkg/logger"
)

func GetPolicy(svc policiessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policy, err := svc.Get(r.Context(), chi.URLParam(r, "key"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, policy)
	}
}

// AdminUpsertPolicy replaces the copy stored under the path key.
func AdminUpsertPolicy(svc policiessvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body upsertPolicyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		policy, err := svc.Upsert(r.Context(), policiessvc.UpsertPolicyInput{
			Key:          chi.URLParam(r, "key"),
			Warranty:     body.Warranty,
			Authenticity: body.Authenticity,
			Returns:      body.Returns,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, policy)
	}
}

type upsertPolicyRequest struct {
	Warranty     string `json:"warranty"`
	Authenticity string `json:"authenticity"`
	Returns      string `json:"returns"`
}
