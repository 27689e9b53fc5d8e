package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	dropssvc "github.com/heetvora/chronomart-backend/internal/drops"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/logger"
)

// ListActiveDrops serves the storefront merchandising blocks currently live.
func ListActiveDrops(svc dropssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drops, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDropListResponse(drops))
	}
}

func AdminListDrops(svc dropssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		drops, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDropListResponse(drops))
	}
}

func AdminCreateDrop(svc dropssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body dropssvc.CreateDropInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drop, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newDropResponse(drop))
	}
}

func AdminUpdateDrop(svc dropssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "dropId"), "dropId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body dropssvc.UpdateDropInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		drop, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDropResponse(drop))
	}
}

func AdminDeleteDrop(svc dropssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "dropId"), "dropId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type dropResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ProductIDs  []string   `json:"productIds,omitempty"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func newDropResponse(drop *models.FeaturedDrop) dropResponse {
	if drop == nil {
		return dropResponse{}
	}
	return dropResponse{
		ID:          drop.ID,
		Title:       drop.Title,
		Description: drop.Description,
		ProductIDs:  drop.ProductIDs,
		StartsAt:    drop.StartsAt,
		EndsAt:      drop.EndsAt,
		IsActive:    drop.IsActive,
		CreatedAt:   drop.CreatedAt,
	}
}

func newDropListResponse(drops []models.FeaturedDrop) []dropResponse {
	items := make([]dropResponse, 0, len(drops))
	for i := range drops {
		items = append(items, newDropResponse(&drops[i]))
	}
	return items
}
