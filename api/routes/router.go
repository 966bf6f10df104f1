package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hamperhouse/storefront-backend/api/controllers"
	analyticscontrollers "github.com/hamperhouse/storefront-backend/api/controllers/analytics"
	cartcontrollers "github.com/hamperhouse/storefront-backend/api/controllers/cart"
	hampercontrollers "github.com/hamperhouse/storefront-backend/api/controllers/hamper"
	ordercontrollers "github.com/hamperhouse/storefront-backend/api/controllers/orders"
	"github.com/hamperhouse/storefront-backend/api/middleware"
	"github.com/hamperhouse/storefront-backend/internal/address"
	"github.com/hamperhouse/storefront-backend/internal/analytics"
	"github.com/hamperhouse/storefront-backend/internal/brands"
	"github.com/hamperhouse/storefront-backend/internal/cart"
	"github.com/hamperhouse/storefront-backend/internal/coupons"
	"github.com/hamperhouse/storefront-backend/internal/hamper"
	"github.com/hamperhouse/storefront-backend/internal/orders"
	product "github.com/hamperhouse/storefront-backend/internal/products"
	"github.com/hamperhouse/storefront-backend/internal/reviews"
	"github.com/hamperhouse/storefront-backend/internal/settings"
	"github.com/hamperhouse/storefront-backend/internal/wishlist"
	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
	pkgredis "github.com/hamperhouse/storefront-backend/pkg/redis"
)

type rateLimiter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

type requestObserver interface {
	Observe(method, route string, status int, elapsed time.Duration)
}

// Dependencies is everything the router hands to controllers.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Pingers        map[string]controllers.Pinger
	MetricsHandler http.Handler
	HTTPMetrics    requestObserver
	RateLimiter    rateLimiter
	Idempotency    pkgredis.IdempotencyStore

	Products  product.Service
	Brands    brands.Service
	Coupons   coupons.Service
	Reviews   reviews.Service
	Settings  settings.Service
	Cart      cart.Service
	Wishlist  wishlist.Service
	Addresses address.Service
	Orders    orders.Service
	Hampers   hamper.Service
	Analytics analytics.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	trackPolicy := middleware.NewRateLimitPolicy("track", cfg.RateLimit.TrackWindow, cfg.RateLimit.TrackIPLimit, 0)
	reviewPolicy := middleware.NewRateLimitPolicy("reviews", cfg.RateLimit.ReviewWindow, 0, cfg.RateLimit.ReviewUserLimit)
	placePolicy := middleware.NewRateLimitPolicy("place_order", cfg.RateLimit.PlaceOrderWindow, 0, cfg.RateLimit.PlaceOrderUser)

	brand := middleware.BrandContext(logg)
	idempotent := middleware.Idempotency(deps.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(brand).Get("/products", controllers.ProductList(deps.Products, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(deps.Products, logg))
		r.With(middleware.RateLimit(trackPolicy, deps.RateLimiter, logg)).
			Patch("/products/{productId}/track", controllers.ProductTrack(deps.Products, logg))
		r.With(brand).Get("/brands/{brand}", controllers.BrandDetail(deps.Brands, logg))
		r.With(brand).Get("/coupons", controllers.CouponList(deps.Coupons, logg))
		r.With(brand).Get("/pricing-settings", controllers.PricingSettingsGet(deps.Settings, logg))
		r.Get("/reviews/{productId}", controllers.ReviewList(deps.Reviews, logg))
		r.Get("/reviews/{productId}/stats", controllers.ReviewStats(deps.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(middleware.RateLimit(reviewPolicy, deps.RateLimiter, logg)).
				Post("/reviews/{productId}", controllers.ReviewCreate(deps.Reviews, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Use(brand)
				r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
				r.Post("/", cartcontrollers.CartSetItem(deps.Cart, logg))
				r.Delete("/", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			})

			r.Get("/wishlist", controllers.WishlistGet(deps.Wishlist, logg))
			r.Post("/wishlist", controllers.WishlistToggle(deps.Wishlist, logg))

			r.Get("/addresses", controllers.AddressList(deps.Addresses, logg))
			r.Post("/addresses", controllers.AddressCreate(deps.Addresses, logg))
			r.Delete("/addresses/{addressId}", controllers.AddressDelete(deps.Addresses, logg))

			r.With(brand, middleware.RateLimit(placePolicy, deps.RateLimiter, logg), idempotent).
				Post("/orders/place", ordercontrollers.PlaceOrder(deps.Orders, logg))
			r.With(brand).Get("/orders", ordercontrollers.ListOrders(deps.Orders, logg))
			r.Get("/orders/{orderId}", ordercontrollers.OrderDetail(deps.Orders, logg))

			r.Get("/hampers", hampercontrollers.DraftGet(deps.Hampers, logg))
			r.Post("/hampers", hampercontrollers.DraftSave(deps.Hampers, logg))
			r.Delete("/hampers", hampercontrollers.DraftDiscard(deps.Hampers, logg))
			r.With(brand, idempotent).Post("/hampers/checkout", hampercontrollers.DraftCheckout(deps.Hampers, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(enums.MemberRoleAdmin, logg),
		)
		r.With(brand).Put("/pricing-settings/{brand}", controllers.AdminUpdatePricingSettings(deps.Settings, logg))
		r.Patch("/products/{productId}/inventory", controllers.AdminUpdateInventory(deps.Products, logg))
		r.With(idempotent).Post("/coupons", controllers.AdminCreateCoupon(deps.Coupons, logg))
		r.Delete("/coupons/{couponId}", controllers.AdminDeleteCoupon(deps.Coupons, logg))
		r.With(brand).Put("/brands/{brand}/theme", controllers.AdminUpdateBrandTheme(deps.Brands, logg))
		r.Get("/analytics/sales", analyticscontrollers.AdminSales(deps.Analytics, logg))
		r.With(idempotent).Patch("/orders/{orderId}/status", ordercontrollers.AdminUpdateStatus(deps.Orders, logg))
	})

	return r
}
