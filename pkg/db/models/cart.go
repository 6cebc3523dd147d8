package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is a token-addressed storefront cart. Monetary totals are
// maintained by the cart service on every mutation so the stored row always
// reflects its items. LastEventID is the deduplication identifier handed to
// the ad pixel for the most recent cart event.
type CartRecord struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token          uuid.UUID  `gorm:"column:token;type:uuid;not null;uniqueIndex"`
	SubtotalCents  int64      `gorm:"column:subtotal_cents;not null;default:0"`
	DiscountCents  int64      `gorm:"column:discount_cents;not null;default:0"`
	TotalCents     int64      `gorm:"column:total_cents;not null;default:0"`
	LastEventKind  string     `gorm:"column:last_event_kind;not null;default:''"`
	LastEventID    *uuid.UUID `gorm:"column:last_event_id;type:uuid"`
	ConvertedAt    *time.Time `gorm:"column:converted_at"`
	Items          []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem snapshots one product (or one variant combination) in a cart.
type CartItem struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID          uuid.UUID `gorm:"column:cart_id;type:uuid;not null"`
	ProductID       uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	CombinationID   string    `gorm:"column:combination_id;not null;default:''"`
	Name            string    `gorm:"column:name;not null"`
	SKU             string    `gorm:"column:sku;not null;default:''"`
	ImageURL        string    `gorm:"column:image_url;not null;default:''"`
	Quantity        int       `gorm:"column:quantity;not null"`
	UnitPriceCents  int64     `gorm:"column:unit_price_cents;not null"`
	OfferPriceCents *int64    `gorm:"column:offer_price_cents"`
	LineTotalCents  int64     `gorm:"column:line_total_cents;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
