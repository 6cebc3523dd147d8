package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/pagination"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

// Service exposes admin product management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	EditVariantField(ctx context.Context, productID uuid.UUID, combinationID, field string, value any) (*ProductDTO, error)
	RemoveVariant(ctx context.Context, productID uuid.UUID, combinationID string) (*ProductDTO, error)
	ReadinessSummary(ctx context.Context, productID uuid.UUID) (*ReadinessSummaryDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU             string
	Title           string
	Description     *string
	Brand           string
	CategoryID      *uuid.UUID
	PriceCents      int64
	OfferPriceCents *int64
	Stock           int
	IsActive        bool
	ImageURLs       []string
	Axes            []variants.Axis
}

// UpdateProductInput holds optional mutation values for a product. A non-nil
// Axes slice triggers regeneration of the combination matrix, merging prior
// per-combination edits by id.
type UpdateProductInput struct {
	SKU             *string
	Title           *string
	Description     *string
	Brand           *string
	CategoryID      *uuid.UUID
	ClearCategory   bool
	PriceCents      *int64
	OfferPriceCents *int64
	ClearOfferPrice bool
	Stock           *int
	IsActive        *bool
	ImageURLs       *[]string
	Axes            *[]variants.Axis
}

type settingsLoader interface {
	Current(ctx context.Context) (*models.ShopSettings, error)
}

type catalogNotifier interface {
	EnqueueUpsertTx(tx *gorm.DB, product *models.Product) error
	EnqueueDeleteTx(tx *gorm.DB, productID uuid.UUID) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	settings settingsLoader
	notifier catalogNotifier
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, settings settingsLoader, notifier catalogNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		settings: settings,
		notifier: notifier,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	sku := strings.TrimSpace(input.SKU)
	title := strings.TrimSpace(input.Title)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if err := validateOfferPrice(input.PriceCents, input.OfferPriceCents); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsBySKU(ctx, sku, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking sku")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %q already in use", sku))
	}

	axes, err := variants.NewAxes(input.Axes)
	if err != nil {
		return nil, err
	}
	combos, err := variants.Generate(axes, nil)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:             sku,
		Title:           title,
		Description:     input.Description,
		Brand:           strings.TrimSpace(input.Brand),
		CategoryID:      input.CategoryID,
		PriceCents:      input.PriceCents,
		OfferPriceCents: input.OfferPriceCents,
		Stock:           input.Stock,
		IsActive:        input.IsActive,
		ImageURLs:       input.ImageURLs,
		Variants:        combos,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
		}
		return s.notifyUpsert(tx, product)
	})
	if err != nil {
		return nil, err
	}

	return s.buildDTO(ctx, product)
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
		}
		taken, err := s.repo.ExistsBySKU(ctx, sku, productID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking sku")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %q already in use", sku))
		}
		product.SKU = sku
	}

	applyUpdateToProduct(product, input)

	if err := validateOfferPrice(product.PriceCents, product.OfferPriceCents); err != nil {
		return nil, err
	}

	if input.Axes != nil {
		axes, err := variants.NewAxes(*input.Axes)
		if err != nil {
			return nil, err
		}
		combos, err := variants.Generate(axes, product.Variants)
		if err != nil {
			return nil, err
		}
		product.Variants = combos
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving product")
		}
		return s.notifyUpsert(tx, product)
	})
	if err != nil {
		return nil, err
	}

	return s.buildDTO(ctx, product)
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, productID); err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
		}
		if s.notifier != nil {
			return s.notifier.EnqueueDeleteTx(tx, productID)
		}
		return nil
	})
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByIDWithCategory(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return s.buildDTO(ctx, product)
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, err := s.repo.List(ctx, input.Filters, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	brandFallback, err := s.defaultBrand(ctx)
	if err != nil {
		return nil, err
	}

	page, next := pagination.Page(rows, input.Pagination.Limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})

	result := &ProductListResult{
		Products:   make([]ProductDTO, 0, len(page)),
		NextCursor: next,
	}
	for i := range page {
		result.Products = append(result.Products, *NewProductDTO(&page[i], effectiveBrand(page[i].Brand, brandFallback)))
	}
	return result, nil
}

func (s *service) EditVariantField(ctx context.Context, productID uuid.UUID, combinationID, field string, value any) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	updated, err := variants.EditField(product.Variants, combinationID, field, value)
	if err != nil {
		return nil, err
	}
	product.Variants = updated

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving product")
		}
		return s.notifyUpsert(tx, product)
	})
	if err != nil {
		return nil, err
	}
	return s.buildDTO(ctx, product)
}

func (s *service) RemoveVariant(ctx context.Context, productID uuid.UUID, combinationID string) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	if product.FindCombination(combinationID) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("combination %q not found", combinationID))
	}
	product.Variants = variants.Remove(product.Variants, combinationID)

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving product")
		}
		return s.notifyUpsert(tx, product)
	})
	if err != nil {
		return nil, err
	}
	return s.buildDTO(ctx, product)
}

func (s *service) ReadinessSummary(ctx context.Context, productID uuid.UUID) (*ReadinessSummaryDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	brandFallback, err := s.defaultBrand(ctx)
	if err != nil {
		return nil, err
	}
	brand := effectiveBrand(product.Brand, brandFallback)

	summary := &ReadinessSummaryDTO{
		ProductID: product.ID,
		Brand:     brand,
		Counts:    map[variants.Readiness]int{},
		Total:     len(product.Variants),
	}
	for _, combo := range product.Variants {
		summary.Counts[variants.ClassifyReadiness(combo, brand)]++
	}
	return summary, nil
}

func (s *service) buildDTO(ctx context.Context, product *models.Product) (*ProductDTO, error) {
	brandFallback, err := s.defaultBrand(ctx)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product, effectiveBrand(product.Brand, brandFallback)), nil
}

func (s *service) defaultBrand(ctx context.Context) (string, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shop settings")
	}
	return settings.DefaultBrand, nil
}

func (s *service) notifyUpsert(tx *gorm.DB, product *models.Product) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.EnqueueUpsertTx(tx, product)
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.ClearCategory {
		product.CategoryID = nil
	} else if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.ClearOfferPrice {
		product.OfferPriceCents = nil
	} else if input.OfferPriceCents != nil {
		product.OfferPriceCents = input.OfferPriceCents
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.ImageURLs != nil {
		product.ImageURLs = append([]string{}, (*input.ImageURLs)...)
	}
}

// validateOfferPrice enforces the form-layer rule that a sale price undercuts
// the list price. Variant-level offer prices are advisory only and stay
// unchecked here.
func validateOfferPrice(priceCents int64, offerCents *int64) error {
	if offerCents == nil {
		return nil
	}
	if *offerCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer price must not be negative")
	}
	if *offerCents >= priceCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer price must be lower than price")
	}
	return nil
}

func effectiveBrand(brand, fallback string) string {
	if strings.TrimSpace(brand) != "" {
		return brand
	}
	return fallback
}
