package catalogsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/config"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/outbox"
)

// Service builds catalog feed previews for the admin readiness screen.
type Service interface {
	ProductFeed(ctx context.Context, productID uuid.UUID) (*FeedReport, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type settingsLoader interface {
	Current(ctx context.Context) (*models.ShopSettings, error)
}

type service struct {
	products productLoader
	settings settingsLoader
	cfg      config.CatalogSyncConfig
}

// NewService constructs a catalog-sync service instance.
func NewService(products productLoader, settings settingsLoader, cfg config.CatalogSyncConfig) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	return &service{products: products, settings: settings, cfg: cfg}, nil
}

func (s *service) ProductFeed(ctx context.Context, productID uuid.UUID) (*FeedReport, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	opts, err := s.buildOptions(ctx, product)
	if err != nil {
		return nil, err
	}
	return BuildFeedRows(product, opts), nil
}

func (s *service) buildOptions(ctx context.Context, product *models.Product) (BuildOptions, error) {
	shop, err := s.settings.Current(ctx)
	if err != nil {
		return BuildOptions{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shop settings")
	}

	brand := strings.TrimSpace(product.Brand)
	if brand == "" {
		brand = shop.DefaultBrand
	}
	return BuildOptions{
		Brand:       brand,
		Currency:    shop.Currency,
		ProductBase: s.cfg.ProductBase,
	}, nil
}

// Notifier enqueues catalog feed events inside product write transactions.
// It satisfies the product service's notifier seam.
type Notifier struct {
	outbox   *outbox.Service
	settings settingsLoader
	cfg      config.CatalogSyncConfig
}

// NewNotifier constructs the transactional feed notifier.
func NewNotifier(outboxSvc *outbox.Service, settings settingsLoader, cfg config.CatalogSyncConfig) (*Notifier, error) {
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings loader required")
	}
	return &Notifier{outbox: outboxSvc, settings: settings, cfg: cfg}, nil
}

// UpsertPayload is the outbox data for a feed upsert event.
type UpsertPayload struct {
	ProductID string    `json:"product_id"`
	Rows      []FeedRow `json:"rows"`
}

// DeletePayload is the outbox data for a feed delete event.
type DeletePayload struct {
	ProductID string `json:"product_id"`
}

// EnqueueUpsertTx renders the product's ready feed rows and enqueues an
// upsert event in the caller's transaction. Disabled sync, or a shop with the
// sync toggle off, makes this a no-op.
func (n *Notifier) EnqueueUpsertTx(tx *gorm.DB, product *models.Product) error {
	enabled, opts, err := n.syncState(tx)
	if err != nil || !enabled {
		return err
	}

	brand := strings.TrimSpace(product.Brand)
	if brand != "" {
		opts.Brand = brand
	}
	report := BuildFeedRows(product, opts)

	return n.outbox.EnqueueTx(tx, enums.OutboxEventCatalogFeedUpserted, product.ID, UpsertPayload{
		ProductID: product.ID.String(),
		Rows:      report.Rows,
	})
}

// EnqueueDeleteTx enqueues a feed delete event in the caller's transaction.
func (n *Notifier) EnqueueDeleteTx(tx *gorm.DB, productID uuid.UUID) error {
	enabled, _, err := n.syncState(tx)
	if err != nil || !enabled {
		return err
	}
	return n.outbox.EnqueueTx(tx, enums.OutboxEventCatalogFeedDeleted, productID, DeletePayload{
		ProductID: productID.String(),
	})
}

func (n *Notifier) syncState(tx *gorm.DB) (bool, BuildOptions, error) {
	if !n.cfg.Enabled {
		return false, BuildOptions{}, nil
	}
	shop, err := n.settings.Current(tx.Statement.Context)
	if err != nil {
		return false, BuildOptions{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shop settings")
	}
	if !shop.CatalogSyncEnabled {
		return false, BuildOptions{}, nil
	}
	return true, BuildOptions{
		Brand:       shop.DefaultBrand,
		Currency:    shop.Currency,
		ProductBase: n.cfg.ProductBase,
	}, nil
}
