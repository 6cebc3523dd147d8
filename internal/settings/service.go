package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
)

// Service reads and mutates the single shop settings row.
type Service interface {
	Current(ctx context.Context) (*models.ShopSettings, error)
	Update(ctx context.Context, input UpdateSettingsInput) (*models.ShopSettings, error)
}

// UpdateSettingsInput holds optional mutation values for shop settings.
type UpdateSettingsInput struct {
	StoreName         *string
	DefaultBrand      *string
	Currency          *enums.CurrencyCode
	ContactEmail      *string
	ContactPhone      *string
	CatalogSyncOn     *bool
	LowStockThreshold *int
}

type service struct {
	db *gorm.DB
}

// NewService constructs a settings service instance.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &service{db: db}, nil
}

// Current loads the singleton row. The migration seeds it, so a missing row
// indicates a broken database rather than first use.
func (s *service) Current(ctx context.Context) (*models.ShopSettings, error) {
	var row models.ShopSettings
	err := s.db.WithContext(ctx).First(&row, "id = ?", models.SettingsSingletonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "shop settings row missing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shop settings")
	}
	return &row, nil
}

func (s *service) Update(ctx context.Context, input UpdateSettingsInput) (*models.ShopSettings, error) {
	row, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}

	if input.StoreName != nil {
		name := strings.TrimSpace(*input.StoreName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
		}
		row.StoreName = name
	}
	if input.DefaultBrand != nil {
		row.DefaultBrand = strings.TrimSpace(*input.DefaultBrand)
	}
	if input.Currency != nil {
		if !input.Currency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", *input.Currency))
		}
		row.Currency = *input.Currency
	}
	if input.ContactEmail != nil {
		row.ContactEmail = strings.TrimSpace(*input.ContactEmail)
	}
	if input.ContactPhone != nil {
		row.ContactPhone = strings.TrimSpace(*input.ContactPhone)
	}
	if input.CatalogSyncOn != nil {
		row.CatalogSyncEnabled = *input.CatalogSyncOn
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold must not be negative")
		}
		row.LowStockThreshold = *input.LowStockThreshold
	}

	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving shop settings")
	}
	return row, nil
}
