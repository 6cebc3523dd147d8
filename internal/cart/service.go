package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

// Event kinds stamped on the cart for ad-pixel deduplication. Each mutation
// regenerates LastEventID so the pixel can fire exactly once per event.
const (
	EventAddToCart        = "add_to_cart"
	EventUpdateItem       = "update_item"
	EventRemoveItem       = "remove_item"
	EventClearCart        = "clear_cart"
	EventInitiateCheckout = "initiate_checkout"
)

// Service exposes the storefront cart operations.
type Service interface {
	GetOrCreate(ctx context.Context, token uuid.UUID) (*models.CartRecord, error)
	AddItem(ctx context.Context, input AddItemInput) (*models.CartRecord, error)
	UpdateItemQty(ctx context.Context, token, itemID uuid.UUID, quantity int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, token, itemID uuid.UUID) (*models.CartRecord, error)
	Clear(ctx context.Context, token uuid.UUID) (*models.CartRecord, error)
}

// AddItemInput identifies the product (and optionally one variant
// combination) to add.
type AddItemInput struct {
	Token         uuid.UUID
	ProductID     uuid.UUID
	CombinationID string
	Quantity      int
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo     *Repository
	products productLoader
	dbClient *db.Client
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, products productLoader, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, products: products, dbClient: dbClient}, nil
}

// GetOrCreate returns the cart for token, creating an empty one when the
// token is unknown or nil.
func (s *service) GetOrCreate(ctx context.Context, token uuid.UUID) (*models.CartRecord, error) {
	return s.getOrCreateTx(ctx, s.repo, token)
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*models.CartRecord, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	snapshot, err := snapshotFor(product, input.CombinationID)
	if err != nil {
		return nil, err
	}

	var token uuid.UUID
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := s.getOrCreateTx(ctx, repo, input.Token)
		if err != nil {
			return err
		}
		token = record.Token

		if existing := findItem(record.Items, input.ProductID, input.CombinationID); existing != nil {
			existing.Quantity += input.Quantity
			existing.LineTotalCents = lineTotalCents(*existing)
			if err := repo.UpdateItemQuantity(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
			}
		} else {
			item := &models.CartItem{
				CartID:          record.ID,
				ProductID:       product.ID,
				CombinationID:   input.CombinationID,
				Name:            snapshot.name,
				SKU:             snapshot.sku,
				ImageURL:        snapshot.imageURL,
				Quantity:        input.Quantity,
				UnitPriceCents:  snapshot.unitPriceCents,
				OfferPriceCents: snapshot.offerPriceCents,
			}
			item.LineTotalCents = lineTotalCents(*item)
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
			}
			record.Items = append(record.Items, *item)
		}

		return s.finalize(ctx, repo, record, EventAddToCart)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, token)
}

func (s *service) UpdateItemQty(ctx context.Context, token, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := s.loadTx(ctx, repo, token)
		if err != nil {
			return err
		}

		item := findItemByID(record.Items, itemID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		item.Quantity = quantity
		item.LineTotalCents = lineTotalCents(*item)
		if err := repo.UpdateItemQuantity(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
		}

		return s.finalize(ctx, repo, record, EventUpdateItem)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, token)
}

func (s *service) RemoveItem(ctx context.Context, token, itemID uuid.UUID) (*models.CartRecord, error) {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := s.loadTx(ctx, repo, token)
		if err != nil {
			return err
		}

		item := findItemByID(record.Items, itemID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		if err := repo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
		}

		kept := record.Items[:0]
		for _, it := range record.Items {
			if it.ID != item.ID {
				kept = append(kept, it)
			}
		}
		record.Items = kept

		return s.finalize(ctx, repo, record, EventRemoveItem)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, token)
}

func (s *service) Clear(ctx context.Context, token uuid.UUID) (*models.CartRecord, error) {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := s.loadTx(ctx, repo, token)
		if err != nil {
			return err
		}
		if err := repo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		record.Items = nil

		return s.finalize(ctx, repo, record, EventClearCart)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, token)
}

func (s *service) getOrCreateTx(ctx context.Context, repo *Repository, token uuid.UUID) (*models.CartRecord, error) {
	if token != uuid.Nil {
		record, err := repo.FindByToken(ctx, token)
		if err == nil {
			return record, nil
		}
		if !IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
	}

	record := &models.CartRecord{Token: uuid.New()}
	if token != uuid.Nil {
		record.Token = token
	}
	if err := repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return record, nil
}

func (s *service) loadTx(ctx context.Context, repo *Repository, token uuid.UUID) (*models.CartRecord, error) {
	record, err := repo.FindByToken(ctx, token)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return record, nil
}

// finalize recomputes totals from the in-memory item list and stamps a fresh
// event id for the given kind.
func (s *service) finalize(ctx context.Context, repo *Repository, record *models.CartRecord, eventKind string) error {
	totals := ComputeTotals(record.Items)
	record.SubtotalCents = totals.SubtotalCents
	record.DiscountCents = totals.DiscountCents
	record.TotalCents = totals.TotalCents
	record.LastEventKind = eventKind
	eventID := uuid.New()
	record.LastEventID = &eventID

	if err := repo.UpdateSummary(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving cart totals")
	}
	return nil
}

func (s *service) reload(ctx context.Context, token uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading cart")
	}
	return record, nil
}

type itemSnapshot struct {
	name            string
	sku             string
	imageURL        string
	unitPriceCents  int64
	offerPriceCents *int64
}

// snapshotFor captures the price and display fields for a product or one of
// its variant combinations at add-to-cart time.
func snapshotFor(product *models.Product, combinationID string) (*itemSnapshot, error) {
	if combinationID == "" {
		if product.HasVariants() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "combination id required for variant product")
		}
		snapshot := &itemSnapshot{
			name:            product.Title,
			sku:             product.SKU,
			unitPriceCents:  product.PriceCents,
			offerPriceCents: product.OfferPriceCents,
		}
		if len(product.ImageURLs) > 0 {
			snapshot.imageURL = product.ImageURLs[0]
		}
		return snapshot, nil
	}

	combo := product.FindCombination(combinationID)
	if combo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("combination %q not found", combinationID))
	}
	if combo.PriceCents == nil || *combo.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "combination has no price")
	}

	snapshot := &itemSnapshot{
		name:            fmt.Sprintf("%s (%s)", product.Title, comboLabel(combo)),
		sku:             combo.SKU,
		imageURL:        combo.ImageURL,
		unitPriceCents:  *combo.PriceCents,
		offerPriceCents: combo.OfferPriceCents,
	}
	if snapshot.sku == "" {
		snapshot.sku = product.SKU
	}
	if snapshot.imageURL == "" && len(product.ImageURLs) > 0 {
		snapshot.imageURL = product.ImageURLs[0]
	}
	return snapshot, nil
}

func comboLabel(combo *variants.Combination) string {
	if combo.Name != "" {
		return combo.Name
	}
	values := make([]string, 0, len(combo.AxisNames))
	for _, axis := range combo.AxisNames {
		values = append(values, combo.AxisValues[axis])
	}
	return variants.DefaultName(values)
}

func findItem(items []models.CartItem, productID uuid.UUID, combinationID string) *models.CartItem {
	for i := range items {
		if items[i].ProductID == productID && items[i].CombinationID == combinationID {
			return &items[i]
		}
	}
	return nil
}

func findItemByID(items []models.CartItem, itemID uuid.UUID) *models.CartItem {
	for i := range items {
		if items[i].ID == itemID {
			return &items[i]
		}
	}
	return nil
}
