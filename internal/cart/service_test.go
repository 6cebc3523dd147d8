package cart

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

type stubProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func setupCartDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = conn.Exec(`
		CREATE TABLE cart_records (
			id TEXT PRIMARY KEY,
			token TEXT NOT NULL UNIQUE,
			subtotal_cents INTEGER NOT NULL DEFAULT 0,
			discount_cents INTEGER NOT NULL DEFAULT 0,
			total_cents INTEGER NOT NULL DEFAULT 0,
			last_event_kind TEXT NOT NULL DEFAULT '',
			last_event_id TEXT,
			converted_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`).Error
	require.NoError(t, err)

	err = conn.Exec(`
		CREATE TABLE cart_items (
			id TEXT PRIMARY KEY,
			cart_id TEXT NOT NULL REFERENCES cart_records(id),
			product_id TEXT NOT NULL,
			combination_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			sku TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL,
			unit_price_cents INTEGER NOT NULL,
			offer_price_cents INTEGER,
			line_total_cents INTEGER NOT NULL,
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

func fixtureProducts(t *testing.T) (*stubProducts, *models.Product, *models.Product) {
	t.Helper()

	offer := int64(90000)
	simple := &models.Product{
		ID:              uuid.New(),
		SKU:             "HW-400",
		Title:           "Quartz Classic",
		PriceCents:      100000,
		OfferPriceCents: &offer,
		Stock:           10,
		IsActive:        true,
	}

	combos, err := variants.Generate([]variants.Axis{
		{Name: "Dial", Options: []string{"Black", "White"}},
	}, nil)
	require.NoError(t, err)
	combos, err = variants.EditField(combos, "black", variants.FieldPrice, int64(250000))
	require.NoError(t, err)

	variant := &models.Product{
		ID:         uuid.New(),
		SKU:        "HW-401",
		Title:      "Explorer 36",
		PriceCents: 250000,
		IsActive:   true,
		Variants:   combos,
	}

	return &stubProducts{byID: map[uuid.UUID]*models.Product{
		simple.ID:  simple,
		variant.ID: variant,
	}}, simple, variant
}

func setupCartService(t *testing.T) (Service, *models.Product, *models.Product) {
	t.Helper()

	conn := setupCartDB(t)
	products, simple, variant := fixtureProducts(t)
	svc, err := NewService(NewRepository(conn), products, db.FromConn(conn))
	require.NoError(t, err)
	return svc, simple, variant
}

func assertCartCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code())
}

func TestComputeTotals(t *testing.T) {
	offer := int64(90000)
	items := []models.CartItem{
		{Quantity: 2, UnitPriceCents: 100000, OfferPriceCents: &offer},
		{Quantity: 1, UnitPriceCents: 250000},
	}

	totals := ComputeTotals(items)
	assert.Equal(t, int64(450000), totals.SubtotalCents)
	assert.Equal(t, int64(20000), totals.DiscountCents)
	assert.Equal(t, int64(430000), totals.TotalCents)

	assert.Equal(t, Totals{}, ComputeTotals(nil))
}

func TestGetOrCreateIssuesToken(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()

	record, err := svc.GetOrCreate(ctx, uuid.Nil)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, record.Token)
	assert.Empty(t, record.Items)

	// same token returns the same cart
	again, err := svc.GetOrCreate(ctx, record.Token)
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)
}

func TestAddItemSnapshotsAndTotals(t *testing.T) {
	svc, simple, _ := setupCartService(t)
	ctx := context.Background()

	record, err := svc.AddItem(ctx, AddItemInput{
		ProductID: simple.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, record.Items, 1)
	item := record.Items[0]
	assert.Equal(t, "Quartz Classic", item.Name)
	assert.Equal(t, int64(100000), item.UnitPriceCents)
	require.NotNil(t, item.OfferPriceCents)
	assert.Equal(t, int64(180000), item.LineTotalCents)

	assert.Equal(t, int64(200000), record.SubtotalCents)
	assert.Equal(t, int64(20000), record.DiscountCents)
	assert.Equal(t, int64(180000), record.TotalCents)
	assert.Equal(t, EventAddToCart, record.LastEventKind)
	require.NotNil(t, record.LastEventID)
}

func TestAddItemMergesSameLine(t *testing.T) {
	svc, simple, _ := setupCartService(t)
	ctx := context.Background()

	record, err := svc.AddItem(ctx, AddItemInput{ProductID: simple.ID, Quantity: 1})
	require.NoError(t, err)

	record, err = svc.AddItem(ctx, AddItemInput{
		Token:     record.Token,
		ProductID: simple.ID,
		Quantity:  2,
	})
	require.NoError(t, err)

	require.Len(t, record.Items, 1)
	assert.Equal(t, 3, record.Items[0].Quantity)
}

func TestAddItemVariantRules(t *testing.T) {
	svc, _, variant := setupCartService(t)
	ctx := context.Background()

	// variant product demands a combination id
	_, err := svc.AddItem(ctx, AddItemInput{ProductID: variant.ID, Quantity: 1})
	assertCartCode(t, err, pkgerrors.CodeValidation)

	// unpriced combination cannot be sold
	_, err = svc.AddItem(ctx, AddItemInput{
		ProductID:     variant.ID,
		CombinationID: "white",
		Quantity:      1,
	})
	assertCartCode(t, err, pkgerrors.CodeValidation)

	record, err := svc.AddItem(ctx, AddItemInput{
		ProductID:     variant.ID,
		CombinationID: "black",
		Quantity:      1,
	})
	require.NoError(t, err)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "black", record.Items[0].CombinationID)
	assert.Equal(t, "Explorer 36 (Black)", record.Items[0].Name)
	assert.Equal(t, int64(250000), record.Items[0].UnitPriceCents)
}

func TestUpdateItemQty(t *testing.T) {
	svc, simple, _ := setupCartService(t)
	ctx := context.Background()

	record, err := svc.AddItem(ctx, AddItemInput{ProductID: simple.ID, Quantity: 1})
	require.NoError(t, err)
	firstEvent := *record.LastEventID

	record, err = svc.UpdateItemQty(ctx, record.Token, record.Items[0].ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, record.Items[0].Quantity)
	assert.Equal(t, int64(450000), record.TotalCents)
	assert.Equal(t, EventUpdateItem, record.LastEventKind)
	// event id regenerated per mutation
	assert.NotEqual(t, firstEvent, *record.LastEventID)

	_, err = svc.UpdateItemQty(ctx, record.Token, record.Items[0].ID, 0)
	assertCartCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.UpdateItemQty(ctx, record.Token, uuid.New(), 2)
	assertCartCode(t, err, pkgerrors.CodeNotFound)
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, simple, variant := setupCartService(t)
	ctx := context.Background()

	record, err := svc.AddItem(ctx, AddItemInput{ProductID: simple.ID, Quantity: 1})
	require.NoError(t, err)
	record, err = svc.AddItem(ctx, AddItemInput{
		Token:         record.Token,
		ProductID:     variant.ID,
		CombinationID: "black",
		Quantity:      1,
	})
	require.NoError(t, err)
	require.Len(t, record.Items, 2)

	record, err = svc.RemoveItem(ctx, record.Token, record.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, record.Items, 1)
	assert.Equal(t, EventRemoveItem, record.LastEventKind)

	record, err = svc.Clear(ctx, record.Token)
	require.NoError(t, err)
	assert.Empty(t, record.Items)
	assert.Equal(t, int64(0), record.TotalCents)
	assert.Equal(t, EventClearCart, record.LastEventKind)
}
