package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/pkg/enums"
)

// Order is a placed storefront order. EventID is the checkout
// deduplication identifier shared with the ad pixel at purchase time.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string            `gorm:"column:order_number;not null;uniqueIndex"`
	CartToken       *uuid.UUID        `gorm:"column:cart_token;type:uuid"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	CustomerName    string            `gorm:"column:customer_name;not null"`
	CustomerEmail   string            `gorm:"column:customer_email;not null"`
	CustomerPhone   string            `gorm:"column:customer_phone;not null;default:''"`
	ShippingAddress string            `gorm:"column:shipping_address;not null"`
	Notes           *string           `gorm:"column:notes"`
	SubtotalCents   int64             `gorm:"column:subtotal_cents;not null"`
	DiscountCents   int64             `gorm:"column:discount_cents;not null;default:0"`
	TotalCents      int64             `gorm:"column:total_cents;not null"`
	EventID         uuid.UUID         `gorm:"column:event_id;type:uuid;not null"`
	LineItems       []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CanceledAt      *time.Time        `gorm:"column:canceled_at"`
	DeliveredAt     *time.Time        `gorm:"column:delivered_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem snapshots one purchased product or variant combination.
type OrderLineItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID      *uuid.UUID `gorm:"column:product_id;type:uuid"`
	CombinationID  string     `gorm:"column:combination_id;not null;default:''"`
	Name           string     `gorm:"column:name;not null"`
	SKU            string     `gorm:"column:sku;not null;default:''"`
	Quantity       int        `gorm:"column:quantity;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int64      `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
