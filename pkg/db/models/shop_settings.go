package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/pkg/enums"
)

// ShopSettings is the single back-office configuration row. A fixed primary
// key keeps it a true singleton at the database level.
type ShopSettings struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	StoreName          string             `gorm:"column:store_name;not null"`
	DefaultBrand       string             `gorm:"column:default_brand;not null;default:''"`
	Currency           enums.CurrencyCode `gorm:"column:currency;not null;default:'IDR'"`
	ContactEmail       string             `gorm:"column:contact_email;not null;default:''"`
	ContactPhone       string             `gorm:"column:contact_phone;not null;default:''"`
	CatalogSyncEnabled bool               `gorm:"column:catalog_sync_enabled;not null;default:false"`
	LowStockThreshold  int                `gorm:"column:low_stock_threshold;not null;default:5"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// SettingsSingletonID pins the one settings row.
var SettingsSingletonID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
