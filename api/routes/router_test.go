package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/horologiq/horologiq-backend/internal/cart"
	product "github.com/horologiq/horologiq-backend/internal/products"
	"github.com/horologiq/horologiq-backend/pkg/config"
	"github.com/horologiq/horologiq-backend/pkg/db/models"
	"github.com/horologiq/horologiq-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input product.UpdateProductInput) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) ListProducts(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	return &product.ProductListResult{}, nil
}

func (stubProductService) EditVariantField(ctx context.Context, productID uuid.UUID, combinationID, field string, value any) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) RemoveVariant(ctx context.Context, productID uuid.UUID, combinationID string) (*product.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) ReadinessSummary(ctx context.Context, productID uuid.UUID) (*product.ReadinessSummaryDTO, error) {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) GetOrCreate(ctx context.Context, token uuid.UUID) (*models.CartRecord, error) {
	return &models.CartRecord{Token: uuid.New()}, nil
}

func (stubCartService) AddItem(ctx context.Context, input cart.AddItemInput) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateItemQty(ctx context.Context, token, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(ctx context.Context, token, itemID uuid.UUID) (*models.CartRecord, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(ctx context.Context, token uuid.UUID) (*models.CartRecord, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		AdminAuth: config.AdminAuthConfig{
			JWTSecret: "secret",
			Issuer:    "horologiq-test",
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, nil, Services{
		Products: stubProductService{},
		Cart:     stubCartService{},
	})
}

func buildAdminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin-1",
		Issuer:    cfg.AdminAuth.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.AdminAuth.JWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Horologiq-Env") != "test" {
		t.Fatalf("missing env header")
	}
}

func TestAdminGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupAcceptsValidToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+buildAdminToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	other := testConfig()
	other.AdminAuth.Issuer = "someone-else"
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+buildAdminToken(t, other))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong issuer got %d", resp.Code)
	}
}

func TestCheckoutRequiresIdempotencyKey(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}
}

func TestStorefrontCartIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous cart got %d", resp.Code)
	}
}
