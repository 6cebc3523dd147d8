package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

type stubSettings struct {
	threshold int
}

func (s *stubSettings) Current(ctx context.Context) (*models.ShopSettings, error) {
	return &models.ShopSettings{LowStockThreshold: s.threshold}, nil
}

func setupInventoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = conn.Exec(`
		CREATE TABLE products (
			id TEXT PRIMARY KEY,
			sku TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			description TEXT,
			brand TEXT NOT NULL DEFAULT '',
			category_id TEXT,
			price_cents INTEGER NOT NULL DEFAULT 0,
			offer_price_cents INTEGER,
			stock INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			image_urls TEXT,
			variants TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`).Error
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return conn
}

func setupInventoryService(t *testing.T, threshold int) (Service, *gorm.DB) {
	t.Helper()

	conn := setupInventoryDB(t)
	svc, err := NewService(NewRepository(conn), db.FromConn(conn), &stubSettings{threshold: threshold})
	require.NoError(t, err)
	return svc, conn
}

func seedVariantProduct(t *testing.T, conn *gorm.DB) *models.Product {
	t.Helper()

	combos, err := variants.Generate([]variants.Axis{
		{Name: "Dial", Options: []string{"Black", "White"}},
	}, nil)
	require.NoError(t, err)

	updated, err := variants.EditField(combos, "black", variants.FieldStock, 10)
	require.NoError(t, err)

	product := &models.Product{
		ID:         uuid.New(),
		SKU:        "HW-300",
		Title:      "Explorer 36",
		PriceCents: 820000,
		IsActive:   true,
		Variants:   updated,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestStockOverviewVariantLines(t *testing.T) {
	svc, conn := setupInventoryService(t, 5)
	product := seedVariantProduct(t, conn)

	overview, err := svc.StockOverview(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, overview.Lines, 2)
	assert.Equal(t, "black", overview.Lines[0].CombinationID)
	assert.Equal(t, 10, overview.Lines[0].Stock)
	assert.Equal(t, "white", overview.Lines[1].CombinationID)
	assert.Equal(t, 0, overview.Lines[1].Stock)
	// combination without its own sku falls back to the product sku
	assert.Equal(t, "HW-300", overview.Lines[1].SKU)
}

func TestAdjustStockBaseAndCombination(t *testing.T) {
	svc, conn := setupInventoryService(t, 5)
	ctx := context.Background()

	simple := &models.Product{
		ID:         uuid.New(),
		SKU:        "HW-301",
		Title:      "Quartz Classic",
		PriceCents: 95000,
		Stock:      4,
		IsActive:   true,
	}
	require.NoError(t, conn.Create(simple).Error)

	line, err := svc.AdjustStock(ctx, AdjustStockInput{ProductID: simple.ID, Delta: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, line.Stock)

	product := seedVariantProduct(t, conn)
	line, err = svc.AdjustStock(ctx, AdjustStockInput{
		ProductID:     product.ID,
		CombinationID: "black",
		Delta:         -4,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, line.Stock)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	combo := reloaded.FindCombination("black")
	require.NotNil(t, combo)
	assert.Equal(t, 6, combo.Stock)
}

func TestAdjustStockGuards(t *testing.T) {
	svc, conn := setupInventoryService(t, 5)
	ctx := context.Background()

	product := seedVariantProduct(t, conn)

	_, err := svc.AdjustStock(ctx, AdjustStockInput{
		ProductID:     product.ID,
		CombinationID: "black",
		Delta:         -11,
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = svc.AdjustStock(ctx, AdjustStockInput{
		ProductID:     product.ID,
		CombinationID: "green",
		Delta:         1,
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	_, err = svc.AdjustStock(ctx, AdjustStockInput{ProductID: uuid.New(), Delta: 1})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestLowStock(t *testing.T) {
	svc, conn := setupInventoryService(t, 5)
	ctx := context.Background()

	seedVariantProduct(t, conn)

	healthy := &models.Product{
		ID:         uuid.New(),
		SKU:        "HW-302",
		Title:      "Well Stocked",
		PriceCents: 120000,
		Stock:      40,
		IsActive:   true,
	}
	require.NoError(t, conn.Create(healthy).Error)

	inactive := &models.Product{
		ID:         uuid.New(),
		SKU:        "HW-303",
		Title:      "Retired Lowrider",
		PriceCents: 100000,
		Stock:      0,
		IsActive:   false,
	}
	require.NoError(t, conn.Create(inactive).Error)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	// only the white combination (stock 0) trips the threshold, black sits at 10
	require.Len(t, low, 1)
	assert.Equal(t, "white", low[0].CombinationID)
	assert.Equal(t, 0, low[0].Stock)
}
