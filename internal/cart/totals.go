package cart

import (
	"github.com/shopspring/decimal"

	"github.com/horologiq/horologiq-backend/pkg/db/models"
)

// Totals is the monetary summary of a cart, in integer cents.
type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// lineAmounts returns the full-price line value and the discount the offer
// price grants, both as decimals.
func lineAmounts(item models.CartItem) (gross decimal.Decimal, discount decimal.Decimal) {
	qty := decimal.NewFromInt(int64(item.Quantity))
	unit := decimal.NewFromInt(item.UnitPriceCents)
	gross = unit.Mul(qty)
	if item.OfferPriceCents != nil && *item.OfferPriceCents < item.UnitPriceCents {
		discount = unit.Sub(decimal.NewFromInt(*item.OfferPriceCents)).Mul(qty)
	}
	return gross, discount
}

// effectiveUnitCents is what one unit actually charges.
func effectiveUnitCents(item models.CartItem) int64 {
	if item.OfferPriceCents != nil && *item.OfferPriceCents < item.UnitPriceCents {
		return *item.OfferPriceCents
	}
	return item.UnitPriceCents
}

// lineTotalCents is the charged amount for the whole line.
func lineTotalCents(item models.CartItem) int64 {
	qty := decimal.NewFromInt(int64(item.Quantity))
	return decimal.NewFromInt(effectiveUnitCents(item)).Mul(qty).IntPart()
}

// ComputeTotals folds the item lines into the cart summary. Subtotal counts
// full prices, discount collects offer-price reductions, total is what the
// customer pays.
func ComputeTotals(items []models.CartItem) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, item := range items {
		gross, off := lineAmounts(item)
		subtotal = subtotal.Add(gross)
		discount = discount.Add(off)
	}
	return Totals{
		SubtotalCents: subtotal.IntPart(),
		DiscountCents: discount.IntPart(),
		TotalCents:    subtotal.Sub(discount).IntPart(),
	}
}
