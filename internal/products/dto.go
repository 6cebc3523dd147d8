package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

// ProductDTO is the admin product payload returned to clients. Axis
// definitions are reconstructed from the persisted combination list so the
// editor can rebuild its matrix without a separate axes column.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	SKU             string          `json:"sku"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	Brand           string          `json:"brand"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	CategoryName    *string         `json:"category_name,omitempty"`
	PriceCents      int64           `json:"price_cents"`
	OfferPriceCents *int64          `json:"offer_price_cents,omitempty"`
	Stock           int             `json:"stock"`
	IsActive        bool            `json:"is_active"`
	ImageURLs       []string        `json:"image_urls"`
	Axes            []variants.Axis `json:"axes"`
	Variants        []VariantDTO    `json:"variants"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// VariantDTO is one combination annotated with its catalog readiness.
type VariantDTO struct {
	Combination variants.Combination `json:"combination"`
	Readiness   variants.Readiness   `json:"readiness"`
}

// ReadinessSummaryDTO aggregates readiness counts for the catalog screen.
type ReadinessSummaryDTO struct {
	ProductID uuid.UUID                  `json:"product_id"`
	Brand     string                     `json:"brand"`
	Counts    map[variants.Readiness]int `json:"counts"`
	Total     int                        `json:"total"`
}

// NewProductDTO builds a DTO from the persisted model, classifying each
// combination against the effective brand.
func NewProductDTO(product *models.Product, effectiveBrand string) *ProductDTO {
	dto := &ProductDTO{
		ID:              product.ID,
		SKU:             product.SKU,
		Title:           product.Title,
		Description:     product.Description,
		Brand:           product.Brand,
		CategoryID:      product.CategoryID,
		PriceCents:      product.PriceCents,
		OfferPriceCents: product.OfferPriceCents,
		Stock:           product.Stock,
		IsActive:        product.IsActive,
		ImageURLs:       append([]string{}, product.ImageURLs...),
		Axes:            variants.AxesFromCombinations(product.Variants),
		Variants:        make([]VariantDTO, 0, len(product.Variants)),
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
	if product.Category != nil {
		name := product.Category.Name
		dto.CategoryName = &name
	}
	for _, combo := range product.Variants {
		dto.Variants = append(dto.Variants, VariantDTO{
			Combination: combo,
			Readiness:   variants.ClassifyReadiness(combo, effectiveBrand),
		})
	}
	return dto
}
