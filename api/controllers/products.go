package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/heetvora/chronomart-backend/api/responses"
	"github.com/heetvora/chronomart-backend/api/validators"
	productssvc "github.com/heetvora/chronomart-backend/internal/products"
	"github.com/heetvora/chronomart-backend/pkg/db/models"
	pkgerrors "github.com/heetvora/chronomart-backend/pkg/errors"
	"github.com/heetvora/chronomart-backend/pkg/logger"
)

// ListProducts serves the public catalog with brand/category/search filters.
func ListProducts(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		query := r.URL.Query()
		filter := productssvc.ListFilter{
			Brand:      strings.TrimSpace(query.Get("brand")),
			Category:   strings.TrimSpace(query.Get("category")),
			Search:     strings.TrimSpace(query.Get("search")),
			OnlyActive: true,
			Page:       page,
			PageSize:   pageSize,
		}

		products, total, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]productResponse, 0, len(products))
		for i := range products {
			items = append(items, newProductResponse(&products[i]))
		}
		responses.WriteSuccess(w, listResponse[productResponse]{
			Items:    items,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

func GetProduct(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product not found"))
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// AdminCreateProduct adds a new catalog listing.
func AdminCreateProduct(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body productssvc.CreateProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

func AdminUpdateProduct(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body productssvc.UpdateProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// AdminDeleteProduct soft-deactivates a listing so order snapshots stay valid.
func AdminDeleteProduct(svc productssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

type productResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	SKU         string    `json:"sku"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Images      []string  `json:"images,omitempty"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`

	CaseSizeMM      *float64 `json:"caseSizeMM,omitempty"`
	CaseMaterial    *string  `json:"caseMaterial,omitempty"`
	StrapMaterial   *string  `json:"strapMaterial,omitempty"`
	Movement        *string  `json:"movement,omitempty"`
	WaterResistance *string  `json:"waterResistance,omitempty"`
	Gender          *string  `json:"gender,omitempty"`
	Categories      []string `json:"categories,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newProductResponse(product *models.Product) productResponse {
	if product == nil {
		return productResponse{}
	}
	return productResponse{
		ID:              product.ID,
		Name:            product.Name,
		Brand:           product.Brand,
		SKU:             product.SKU,
		Description:     product.Description,
		PriceCents:      product.PriceCents,
		Currency:        product.Currency,
		Images:          product.Images,
		Stock:           product.Stock,
		IsActive:        product.IsActive,
		CaseSizeMM:      product.CaseSizeMM,
		CaseMaterial:    product.CaseMaterial,
		StrapMaterial:   product.StrapMaterial,
		Movement:        product.Movement,
		WaterResistance: product.WaterResistance,
		Gender:          product.Gender,
		Categories:      product.Categories,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}
