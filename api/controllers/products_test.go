package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	product "github.com/horologiq/horologiq-backend/internal/products"
	"github.com/horologiq/horologiq-backend/pkg/logger"
	"github.com/horologiq/horologiq-backend/pkg/variants"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParam(req *http.Request, name, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

type stubProductService struct {
	created     *product.CreateProductInput
	editedField string
	editedValue any
	dto         *product.ProductDTO
}

func (s *stubProductService) CreateProduct(ctx context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.created = &input
	return s.dto, nil
}

func (s *stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input product.UpdateProductInput) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) ListProducts(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	panic("unimplemented")
}

func (s *stubProductService) EditVariantField(ctx context.Context, productID uuid.UUID, combinationID, field string, value any) (*product.ProductDTO, error) {
	s.editedField = field
	s.editedValue = value
	return s.dto, nil
}

func (s *stubProductService) RemoveVariant(ctx context.Context, productID uuid.UUID, combinationID string) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) ReadinessSummary(ctx context.Context, productID uuid.UUID) (*product.ReadinessSummaryDTO, error) {
	panic("unimplemented")
}

func TestCreateProduct(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		body := `{"sku":"HQ-1","title":"Dial","price_cents":250000,"stock":3,"is_active":true,
			"axes":[{"name":"Color","options":["Black","Silver"]}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		stub := &stubProductService{dto: &product.ProductDTO{SKU: "HQ-1"}}
		CreateProduct(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.created == nil {
			t.Fatal("expected CreateProduct to be invoked")
		}
		if len(stub.created.Axes) != 1 || stub.created.Axes[0].Name != "Color" {
			t.Fatalf("unexpected axes: %+v", stub.created.Axes)
		}
	})

	t.Run("missing title rejected", func(t *testing.T) {
		body := `{"sku":"HQ-1","price_cents":250000}`
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		stub := &stubProductService{}
		CreateProduct(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.created != nil {
			t.Fatal("service should not be called on validation failure")
		}
	})

	t.Run("nil service", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		CreateProduct(nil, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestEditVariantFieldValueConversion(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	post := func(stub *stubProductService, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch,
			"/api/admin/v1/products/"+productID.String()+"/variants/black", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = withURLParam(req, "productID", productID.String())
		routeCtx := chi.RouteContext(req.Context())
		routeCtx.URLParams.Add("combinationID", "black")
		rec := httptest.NewRecorder()
		EditVariantField(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("price becomes cents pointer", func(t *testing.T) {
		stub := &stubProductService{dto: &product.ProductDTO{}}
		rec := post(stub, `{"field":"price","value":250000}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		cents, ok := stub.editedValue.(*int64)
		if !ok || cents == nil || *cents != 250000 {
			t.Fatalf("expected *int64 250000, got %#v", stub.editedValue)
		}
	})

	t.Run("null price clears", func(t *testing.T) {
		stub := &stubProductService{dto: &product.ProductDTO{}}
		rec := post(stub, `{"field":"offer_price","value":null}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		cents, ok := stub.editedValue.(*int64)
		if !ok || cents != nil {
			t.Fatalf("expected nil *int64, got %#v", stub.editedValue)
		}
	})

	t.Run("stock becomes int", func(t *testing.T) {
		stub := &stubProductService{dto: &product.ProductDTO{}}
		rec := post(stub, `{"field":"stock","value":7}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stock, ok := stub.editedValue.(int); !ok || stock != 7 {
			t.Fatalf("expected int 7, got %#v", stub.editedValue)
		}
	})

	t.Run("sku stays string", func(t *testing.T) {
		stub := &stubProductService{dto: &product.ProductDTO{}}
		rec := post(stub, `{"field":"sku","value":"HQ-1-B"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if str, ok := stub.editedValue.(string); !ok || str != "HQ-1-B" {
			t.Fatalf("expected string, got %#v", stub.editedValue)
		}
		if stub.editedField != variants.FieldSKU {
			t.Fatalf("unexpected field %q", stub.editedField)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		stub := &stubProductService{dto: &product.ProductDTO{}}
		rec := post(stub, `{"field":"weight","value":3}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("wrong type rejected", func(t *testing.T) {
		stub := &stubProductService{dto: &product.ProductDTO{}}
		rec := post(stub, `{"field":"price","value":"expensive"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGetProductInvalidID(t *testing.T) {
	logg := testLogger()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products/not-a-uuid", nil)
	req = withURLParam(req, "productID", "not-a-uuid")
	rec := httptest.NewRecorder()

	GetProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}
