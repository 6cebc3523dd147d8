package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/api/responses"
	"github.com/horologiq/horologiq-backend/api/validators"
	product "github.com/horologiq/horologiq-backend/internal/products"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/logger"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

type axisPayload struct {
	Name    string   `json:"name" validate:"required"`
	Options []string `json:"options" validate:"required,min=1,dive,required"`
}

func toAxes(payloads []axisPayload) []variants.Axis {
	axes := make([]variants.Axis, 0, len(payloads))
	for _, p := range payloads {
		axes = append(axes, variants.Axis{Name: p.Name, Options: p.Options})
	}
	return axes
}

type createProductRequest struct {
	SKU             string        `json:"sku" validate:"required"`
	Title           string        `json:"title" validate:"required"`
	Description     *string       `json:"description"`
	Brand           string        `json:"brand"`
	CategoryID      *uuid.UUID    `json:"category_id"`
	PriceCents      int64         `json:"price_cents" validate:"gte=0"`
	OfferPriceCents *int64        `json:"offer_price_cents"`
	Stock           int           `json:"stock" validate:"gte=0"`
	IsActive        bool          `json:"is_active"`
	ImageURLs       []string      `json:"image_urls"`
	Axes            []axisPayload `json:"axes" validate:"dive"`
}

func (req createProductRequest) toInput() product.CreateProductInput {
	return product.CreateProductInput{
		SKU:             req.SKU,
		Title:           req.Title,
		Description:     req.Description,
		Brand:           req.Brand,
		CategoryID:      req.CategoryID,
		PriceCents:      req.PriceCents,
		OfferPriceCents: req.OfferPriceCents,
		Stock:           req.Stock,
		IsActive:        req.IsActive,
		ImageURLs:       req.ImageURLs,
		Axes:            toAxes(req.Axes),
	}
}

type updateProductRequest struct {
	SKU             *string        `json:"sku"`
	Title           *string        `json:"title"`
	Description     *string        `json:"description"`
	Brand           *string        `json:"brand"`
	CategoryID      *uuid.UUID     `json:"category_id"`
	ClearCategory   bool           `json:"clear_category"`
	PriceCents      *int64         `json:"price_cents"`
	OfferPriceCents *int64         `json:"offer_price_cents"`
	ClearOfferPrice bool           `json:"clear_offer_price"`
	Stock           *int           `json:"stock"`
	IsActive        *bool          `json:"is_active"`
	ImageURLs       *[]string      `json:"image_urls"`
	Axes            *[]axisPayload `json:"axes"`
}

func (req updateProductRequest) toInput() product.UpdateProductInput {
	input := product.UpdateProductInput{
		SKU:             req.SKU,
		Title:           req.Title,
		Description:     req.Description,
		Brand:           req.Brand,
		CategoryID:      req.CategoryID,
		ClearCategory:   req.ClearCategory,
		PriceCents:      req.PriceCents,
		OfferPriceCents: req.OfferPriceCents,
		ClearOfferPrice: req.ClearOfferPrice,
		Stock:           req.Stock,
		IsActive:        req.IsActive,
		ImageURLs:       req.ImageURLs,
	}
	if req.Axes != nil {
		axes := toAxes(*req.Axes)
		input.Axes = &axes
	}
	return input
}

func CreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func UpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), productID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func DeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ListProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := product.ListFilters{
			Brand: r.URL.Query().Get("brand"),
			Query: r.URL.Query().Get("q"),
		}
		if raw := r.URL.Query().Get("category_id"); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category_id"))
				return
			}
			filters.CategoryID = &categoryID
		}
		isActive, err := boolQuery(r, "is_active")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.IsActive = isActive

		result, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Filters:    filters,
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type editVariantFieldRequest struct {
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value"`
}

// toValue converts the raw JSON value into the Go type the variant engine
// expects for the named field.
func (req editVariantFieldRequest) toValue() (any, error) {
	isNull := len(req.Value) == 0 || bytes.Equal(bytes.TrimSpace(req.Value), []byte("null"))

	switch req.Field {
	case variants.FieldSKU, variants.FieldName, variants.FieldImageURL:
		if isNull {
			return "", nil
		}
		var str string
		if err := json.Unmarshal(req.Value, &str); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "value must be a string")
		}
		return str, nil
	case variants.FieldPrice, variants.FieldOfferPrice:
		if isNull {
			return (*int64)(nil), nil
		}
		var cents int64
		if err := json.Unmarshal(req.Value, &cents); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "value must be an integer amount in cents")
		}
		return &cents, nil
	case variants.FieldStock:
		if isNull {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock value is required")
		}
		var stock int
		if err := json.Unmarshal(req.Value, &stock); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "value must be an integer")
		}
		return stock, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown variant field "+req.Field)
}

func EditVariantField(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		combinationID := chi.URLParam(r, "combinationID")

		var payload editVariantFieldRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		value, err := payload.toValue()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.EditVariantField(r.Context(), productID, combinationID, payload.Field, value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func RemoveVariant(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		combinationID := chi.URLParam(r, "combinationID")

		dto, err := svc.RemoveVariant(r.Context(), productID, combinationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductReadiness(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.ReadinessSummary(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
