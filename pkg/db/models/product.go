package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/horologiq/horologiq-backend/pkg/variants"
)

// Product is the canonical catalog listing. Variant combinations are
// persisted denormalized on the row; axis definitions are reconstructed from
// them on read.
type Product struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU             string                   `gorm:"column:sku;not null"`
	Title           string                   `gorm:"column:title;not null"`
	Description     *string                  `gorm:"column:description"`
	Brand           string                   `gorm:"column:brand;not null;default:''"`
	CategoryID      *uuid.UUID               `gorm:"column:category_id;type:uuid"`
	PriceCents      int64                    `gorm:"column:price_cents;not null"`
	OfferPriceCents *int64                   `gorm:"column:offer_price_cents"`
	Stock           int                      `gorm:"column:stock;not null;default:0"`
	IsActive        bool                     `gorm:"column:is_active;not null"`
	ImageURLs       pq.StringArray           `gorm:"column:image_urls;type:text[]"`
	Variants        variants.CombinationList `gorm:"column:variants;type:jsonb"`
	Category        *Category                `gorm:"foreignKey:CategoryID"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// HasVariants reports whether the product sells through the variant matrix
// rather than the flat price/stock columns.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// FindCombination returns the variant combination matching id, if any.
func (p *Product) FindCombination(id string) *variants.Combination {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}
