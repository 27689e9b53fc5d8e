package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	couponssvc "github.com/heetvora/chronomart-backend/internal/coupons"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	"github.com/heetvora/chronomart-backend/pkg/logger"
)

// ValidateCoupon computes a discount preview for the given subtotal. The same
// validation runs again server-side at checkout commit; this endpoint is a
// display hint only.
func ValidateCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validateCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, discount, err := svc.Validate(r.Context(), nil, body.Code, body.SubtotalCents, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, validateCouponResponse{
			Code:          coupon.Code,
			DiscountCents: discount,
			TotalCents:    body.SubtotalCents - discount,
		})
	}
}

func AdminCreateCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body couponssvc.CreateCouponInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCouponResponse(coupon))
	}
}

func AdminUpdateCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "couponId"), "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body couponssvc.UpdateCouponInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCouponResponse(coupon))
	}
}

func AdminDeleteCoupon(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "couponId"), "couponId")
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

func AdminListCoupons(svc couponssvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		coupons, total, err := svc.List(r.Context(), page, pageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]couponResponse, 0, len(coupons))
		for i := range coupons {
			items = append(items, newCouponResponse(&coupons[i]))
		}
		responses.WriteSuccess(w, listResponse[couponResponse]{
			Items:    items,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

type validateCouponRequest struct {
	Code          string `json:"code" validate:"required"`
	SubtotalCents int64  `json:"subtotalCents" validate:"required,min=1"`
}

type validateCouponResponse struct {
	Code          string `json:"code"`
	DiscountCents int64  `json:"discountCents"`
	TotalCents    int64  `json:"totalCents"`
}

type couponResponse struct {
	ID               uuid.UUID  `json:"id"`
	Code             string     `json:"code"`
	DiscountType     string     `json:"discountType"`
	Value            int64      `json:"value"`
	MinOrderCents    int64      `json:"minOrderCents"`
	MaxDiscountCents *int64     `json:"maxDiscountCents,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func newCouponResponse(coupon *models.Coupon) couponResponse {
	if coupon == nil {
		return couponResponse{}
	}
	return couponResponse{
		ID:               coupon.ID,
		Code:             coupon.Code,
		DiscountType:     string(coupon.DiscountType),
		Value:            coupon.Value,
		MinOrderCents:    coupon.MinOrderCents,
		MaxDiscountCents: coupon.MaxDiscountCents,
		ExpiresAt:        coupon.ExpiresAt,
		IsActive:         coupon.IsActive,
		CreatedAt:        coupon.CreatedAt,
	}
}
