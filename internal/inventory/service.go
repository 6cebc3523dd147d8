package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

// Service exposes stock visibility and adjustment operations.
type Service interface {
	StockOverview(ctx context.Context, productID uuid.UUID) (*StockOverviewDTO, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) (*StockLineDTO, error)
	LowStock(ctx context.Context) ([]StockLineDTO, error)
}

// AdjustStockInput identifies one stock line and the signed change to apply.
// An empty CombinationID targets the product base stock.
type AdjustStockInput struct {
	ProductID     uuid.UUID
	CombinationID string
	Delta         int
}

// StockLineDTO is one stock position, either a product base line or one
// variant combination.
type StockLineDTO struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	CombinationID string    `json:"combination_id,omitempty"`
	Name          string    `json:"name,omitempty"`
	Stock         int       `json:"stock"`
}

// StockOverviewDTO groups every stock line for a product.
type StockOverviewDTO struct {
	ProductID uuid.UUID      `json:"product_id"`
	Title     string         `json:"title"`
	Lines     []StockLineDTO `json:"lines"`
}

type settingsLoader interface {
	Current(ctx context.Context) (*models.ShopSettings, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	settings settingsLoader
}

// NewService constructs an inventory service instance.
func NewService(repo *Repository, dbClient *db.Client, settings settingsLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	return &service{repo: repo, dbClient: dbClient, settings: settings}, nil
}

func (s *service) StockOverview(ctx context.Context, productID uuid.UUID) (*StockOverviewDTO, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	overview := &StockOverviewDTO{
		ProductID: product.ID,
		Title:     product.Title,
		Lines:     stockLines(product),
	}
	return overview, nil
}

func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*StockLineDTO, error) {
	var line *StockLineDTO

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProduct(ctx, input.ProductID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}

		if input.CombinationID == "" {
			next := product.Stock + input.Delta
			if next < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("stock cannot go below zero, have %d", product.Stock))
			}
			product.Stock = next
			line = baseLine(product)
		} else {
			combo := product.FindCombination(input.CombinationID)
			if combo == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("combination %q not found", input.CombinationID))
			}
			next := combo.Stock + input.Delta
			if next < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("stock cannot go below zero, have %d", combo.Stock))
			}
			updated, err := variants.EditField(product.Variants, input.CombinationID, variants.FieldStock, next)
			if err != nil {
				return err
			}
			product.Variants = updated
			line = comboLine(product, product.FindCombination(input.CombinationID))
		}

		if err := repo.SaveProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (s *service) LowStock(ctx context.Context) ([]StockLineDTO, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shop settings")
	}
	threshold := settings.LowStockThreshold

	products, err := s.repo.ActiveProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	low := []StockLineDTO{}
	for i := range products {
		for _, line := range stockLines(&products[i]) {
			if line.Stock <= threshold {
				low = append(low, line)
			}
		}
	}
	return low, nil
}

// stockLines expands a product into its stock positions. Products with a
// variant matrix report per-combination lines only, the base stock column is
// ignored for them.
func stockLines(product *models.Product) []StockLineDTO {
	if !product.HasVariants() {
		return []StockLineDTO{*baseLine(product)}
	}

	lines := make([]StockLineDTO, 0, len(product.Variants))
	for i := range product.Variants {
		lines = append(lines, *comboLine(product, &product.Variants[i]))
	}
	return lines
}

func baseLine(product *models.Product) *StockLineDTO {
	return &StockLineDTO{
		ProductID: product.ID,
		SKU:       product.SKU,
		Title:     product.Title,
		Stock:     product.Stock,
	}
}

func comboLine(product *models.Product, combo *variants.Combination) *StockLineDTO {
	sku := combo.SKU
	if sku == "" {
		sku = product.SKU
	}
	name := combo.Name
	if name == "" {
		values := make([]string, 0, len(combo.AxisNames))
		for _, axis := range combo.AxisNames {
			values = append(values, combo.AxisValues[axis])
		}
		name = variants.DefaultName(values)
	}
	return &StockLineDTO{
		ProductID:     product.ID,
		SKU:           sku,
		Title:         product.Title,
		CombinationID: combo.ID,
		Name:          name,
		Stock:         combo.Stock,
	}
}
