package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/internal/cart"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
)

type stubCartService struct {
	record   *models.CartRecord
	addInput *cart.AddItemInput
	gotToken uuid.UUID
}

func (s *stubCartService) GetOrCreate(ctx context.Context, token uuid.UUID) (*models.CartRecord, error) {
	s.gotToken = token
	return s.record, nil
}

func (s *stubCartService) AddItem(ctx context.Context, input cart.AddItemInput) (*models.CartRecord, error) {
	s.addInput = &input
	return s.record, nil
}

func (s *stubCartService) UpdateItemQty(ctx context.Context, token, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (s *stubCartService) RemoveItem(ctx context.Context, token, itemID uuid.UUID) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (s *stubCartService) Clear(ctx context.Context, token uuid.UUID) (*models.CartRecord, error) {
	panic("unimplemented")
}

func TestGetCart(t *testing.T) {
	logg := testLogger()
	token := uuid.New()

	t.Run("missing header mints fresh cart", func(t *testing.T) {
		stub := &stubCartService{record: &models.CartRecord{ID: uuid.New(), Token: token}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		rec := httptest.NewRecorder()

		GetCart(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.gotToken != uuid.Nil {
			t.Fatalf("expected nil token passed through, got %s", stub.gotToken)
		}
		if got := rec.Header().Get(CartTokenHeader); got != token.String() {
			t.Fatalf("expected token header %s, got %q", token, got)
		}
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set(CartTokenHeader, "not-a-uuid")
		rec := httptest.NewRecorder()

		GetCart(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAddCartItem(t *testing.T) {
	logg := testLogger()
	token := uuid.New()
	productID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubCartService{record: &models.CartRecord{Token: token}}
		body := `{"product_id":"` + productID.String() + `","combination_id":"black","quantity":2}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(CartTokenHeader, token.String())
		rec := httptest.NewRecorder()

		AddCartItem(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.addInput == nil {
			t.Fatal("expected AddItem to be invoked")
		}
		if stub.addInput.Token != token || stub.addInput.ProductID != productID {
			t.Fatalf("unexpected input: %+v", stub.addInput)
		}
		if stub.addInput.CombinationID != "black" || stub.addInput.Quantity != 2 {
			t.Fatalf("unexpected input: %+v", stub.addInput)
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		stub := &stubCartService{record: &models.CartRecord{Token: token}}
		body := `{"product_id":"` + productID.String() + `","quantity":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		AddCartItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.addInput != nil {
			t.Fatal("service should not be called on validation failure")
		}
	})
}
