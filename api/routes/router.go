package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/horologiq/horologiq-backend/api/controllers"
	"github.com/horologiq/horologiq-backend/api/middleware"
	"github.com/horologiq/horologiq-backend/internal/cart"
	"github.com/horologiq/horologiq-backend/internal/catalogsync"
	category "github.com/horologiq/horologiq-backend/internal/categories"
	checkoutsvc "github.com/horologiq/horologiq-backend/internal/checkout"
	"github.com/horologiq/horologiq-backend/internal/finance"
	"github.com/horologiq/horologiq-backend/internal/inventory"
	order "github.com/horologiq/horologiq-backend/internal/orders"
	product "github.com/horologiq/horologiq-backend/internal/products"
	"github.com/horologiq/horologiq-backend/internal/settings"
	"github.com/horologiq/horologiq-backend/pkg/config"
	"github.com/horologiq/horologiq-backend/pkg/db"
	"github.com/horologiq/horologiq-backend/pkg/logger"
	"github.com/horologiq/horologiq-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Products    product.Service
	Categories  category.Service
	Inventory   inventory.Service
	Cart        cart.Service
	Checkout    checkoutsvc.Service
	Orders      order.Service
	Settings    settings.Service
	Finance     finance.Service
	CatalogSync catalogsync.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Storefront surface: anonymous, cart-token addressed.
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.StorefrontProducts(svcs.Products, logg))
			r.Get("/{productID}", controllers.StorefrontProduct(svcs.Products, logg))
		})
		r.Get("/categories", controllers.ListCategories(svcs.Categories, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(svcs.Cart, logg))
			r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
			r.Post("/items", controllers.AddCartItem(svcs.Cart, logg))
			r.Patch("/items/{itemID}", controllers.UpdateCartItem(svcs.Cart, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(svcs.Cart, logg))
		})

		r.With(middleware.RequireIdempotencyKey(logg)).
			Post("/checkout", controllers.PlaceOrder(svcs.Checkout, logg))
	})

	// Back office: token-verified admin surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminAuth, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Post("/", controllers.CreateProduct(svcs.Products, logg))
			r.Get("/{productID}", controllers.GetProduct(svcs.Products, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(svcs.Products, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(svcs.Products, logg))
			r.Patch("/{productID}/variants/{combinationID}", controllers.EditVariantField(svcs.Products, logg))
			r.Delete("/{productID}/variants/{combinationID}", controllers.RemoveVariant(svcs.Products, logg))
			r.Get("/{productID}/readiness", controllers.ProductReadiness(svcs.Products, logg))
			r.Get("/{productID}/feed", controllers.ProductFeedPreview(svcs.CatalogSync, logg))
			r.Get("/{productID}/stock", controllers.StockOverview(svcs.Inventory, logg))
			r.Post("/{productID}/stock", controllers.AdjustStock(svcs.Inventory, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svcs.Categories, logg))
			r.Post("/", controllers.CreateCategory(svcs.Categories, logg))
			r.Get("/{categoryID}", controllers.GetCategory(svcs.Categories, logg))
			r.Patch("/{categoryID}", controllers.UpdateCategory(svcs.Categories, logg))
			r.Delete("/{categoryID}", controllers.DeleteCategory(svcs.Categories, logg))
		})

		r.Get("/inventory/low-stock", controllers.LowStock(svcs.Inventory, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderID}/transition", controllers.TransitionOrder(svcs.Orders, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(svcs.Settings, logg))
			r.Patch("/", controllers.UpdateSettings(svcs.Settings, logg))
		})

		r.Get("/finance/overview", controllers.FinanceOverview(svcs.Finance, logg))
	})

	return r
}
