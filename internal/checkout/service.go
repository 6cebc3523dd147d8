package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/horologiq/horologiq-backend/internal/cart"
	order "github.com/horologiq/horologiq-backend/internal/orders"
	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/enums"
	pkgerrors "github.com/horologiq/horologiq-backend/pkg/errors"
	"github.com/horologiq/horologiq-backend/pkg/redis"
)

const idempotencyScope = "checkout"

// idempotencyTTL covers retries of the same checkout submission without
// pinning keys forever.
const idempotencyTTL = 24 * time.Hour

// Service turns a cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
}

// PlaceOrderInput carries the checkout form plus the cart token it converts.
type PlaceOrderInput struct {
	CartToken       uuid.UUID
	IdempotencyKey  string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	Notes           *string
}

type service struct {
	cartRepo  *cart.Repository
	orderRepo *order.Repository
	dbClient  *db.Client
	idem      redis.IdempotencyStore
	now       func() time.Time
}

// NewService constructs a checkout service instance. The idempotency store
// may be nil, which disables duplicate-submission protection.
func NewService(cartRepo *cart.Repository, orderRepo *order.Repository, dbClient *db.Client, idem redis.IdempotencyStore) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		dbClient:  dbClient,
		idem:      idem,
		now:       time.Now,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if s.idem != nil && input.IdempotencyKey != "" {
		key := s.idem.IdempotencyKey(idempotencyScope, input.IdempotencyKey)
		won, err := s.idem.SetNX(ctx, key, input.CartToken.String(), idempotencyTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving idempotency key")
		}
		if !won {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout already submitted")
		}
	}

	var placed *models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		record, err := cartRepo.FindByToken(ctx, input.CartToken)
		if err != nil {
			if cart.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if record.ConvertedAt != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already checked out")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		now := s.now().UTC()
		number, err := orderRepo.NextOrderNumber(ctx, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deriving order number")
		}

		totals := cart.ComputeTotals(record.Items)
		token := record.Token
		placed = &models.Order{
			OrderNumber:     number,
			CartToken:       &token,
			Status:          enums.OrderStatusPending,
			CustomerName:    strings.TrimSpace(input.CustomerName),
			CustomerEmail:   strings.TrimSpace(input.CustomerEmail),
			CustomerPhone:   strings.TrimSpace(input.CustomerPhone),
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			Notes:           input.Notes,
			SubtotalCents:   totals.SubtotalCents,
			DiscountCents:   totals.DiscountCents,
			TotalCents:      totals.TotalCents,
			EventID:         uuid.New(),
			LineItems:       lineItemsFrom(record.Items),
		}
		if err := orderRepo.Create(ctx, placed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		if err := cartRepo.DeleteItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}
		record.Items = nil
		record.SubtotalCents = 0
		record.DiscountCents = 0
		record.TotalCents = 0
		record.LastEventKind = cart.EventInitiateCheckout
		record.LastEventID = &placed.EventID
		record.ConvertedAt = &now
		if err := cartRepo.UpdateSummary(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking cart converted")
		}
		return nil
	})
	if err != nil {
		// release the key so the customer can retry after a real failure
		if s.idem != nil && input.IdempotencyKey != "" {
			_ = s.idem.Del(ctx, s.idem.IdempotencyKey(idempotencyScope, input.IdempotencyKey))
		}
		return nil, err
	}

	return placed, nil
}

func validateInput(input PlaceOrderInput) error {
	if input.CartToken == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	return nil
}

func lineItemsFrom(items []models.CartItem) []models.OrderLineItem {
	lines := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		productID := item.ProductID
		lines = append(lines, models.OrderLineItem{
			ProductID:      &productID,
			CombinationID:  item.CombinationID,
			Name:           item.Name,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		})
	}
	return lines
}
