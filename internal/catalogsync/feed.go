package catalogsync

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

// FeedRow is one advertising-catalog item in the column layout the feed
// consumer expects.
type FeedRow struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Brand        string `json:"brand"`
	Price        string `json:"price"`
	SalePrice    string `json:"sale_price,omitempty"`
	Availability string `json:"availability"`
	ImageLink    string `json:"image_link"`
	Link         string `json:"link"`
}

// SkippedRow reports a combination withheld from the feed and why.
type SkippedRow struct {
	CombinationID string             `json:"combination_id"`
	Readiness     variants.Readiness `json:"readiness"`
}

// FeedReport is the per-product feed build result: rows that will ship plus
// the combinations held back.
type FeedReport struct {
	ProductID string       `json:"product_id"`
	Rows      []FeedRow    `json:"rows"`
	Skipped   []SkippedRow `json:"skipped"`
}

// BuildOptions carries the shop-level inputs feed rows are rendered with.
type BuildOptions struct {
	Brand       string
	Currency    enums.CurrencyCode
	ProductBase string
}

// BuildFeedRows renders the feed rows for one product. Variant products emit
// one row per ready combination; combinations in any other readiness state
// are listed in the skip report. Non-variant products are treated as a single
// synthetic combination built from the product columns.
func BuildFeedRows(product *models.Product, opts BuildOptions) *FeedReport {
	report := &FeedReport{
		ProductID: product.ID.String(),
		Rows:      []FeedRow{},
		Skipped:   []SkippedRow{},
	}

	if !product.HasVariants() {
		combo := variants.Combination{
			ID:              "default",
			SKU:             product.SKU,
			Name:            product.Title,
			PriceCents:      &product.PriceCents,
			OfferPriceCents: product.OfferPriceCents,
			Stock:           product.Stock,
		}
		if len(product.ImageURLs) > 0 {
			combo.ImageURL = product.ImageURLs[0]
		}
		appendCombo(report, product, combo, opts)
		return report
	}

	for _, combo := range product.Variants {
		appendCombo(report, product, combo, opts)
	}
	return report
}

func appendCombo(report *FeedReport, product *models.Product, combo variants.Combination, opts BuildOptions) {
	readiness := variants.ClassifyReadiness(combo, opts.Brand)
	if readiness != variants.ReadinessReady {
		report.Skipped = append(report.Skipped, SkippedRow{
			CombinationID: combo.ID,
			Readiness:     readiness,
		})
		return
	}

	row := FeedRow{
		ID:           feedRowID(product, combo.ID),
		Title:        rowTitle(product, combo),
		Brand:        opts.Brand,
		Price:        formatMoney(*combo.PriceCents, opts.Currency),
		Availability: availability(combo.Stock),
		ImageLink:    combo.ImageURL,
		Link:         fmt.Sprintf("%s/%s", opts.ProductBase, product.ID),
	}
	if product.Description != nil {
		row.Description = *product.Description
	}
	if combo.OfferPriceCents != nil && *combo.OfferPriceCents > 0 && *combo.OfferPriceCents < *combo.PriceCents {
		row.SalePrice = formatMoney(*combo.OfferPriceCents, opts.Currency)
	}
	report.Rows = append(report.Rows, row)
}

func feedRowID(product *models.Product, comboID string) string {
	return fmt.Sprintf("%s_%s", product.SKU, comboID)
}

func rowTitle(product *models.Product, combo variants.Combination) string {
	if combo.Name == "" || combo.Name == product.Title {
		return product.Title
	}
	return fmt.Sprintf("%s (%s)", product.Title, combo.Name)
}

func availability(stock int) string {
	if stock > 0 {
		return "in stock"
	}
	return "out of stock"
}

// formatMoney renders cents as a feed price string, e.g. "2500.00 IDR".
func formatMoney(cents int64, currency enums.CurrencyCode) string {
	amount := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100))
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}
