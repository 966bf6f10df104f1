package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamperhouse/storefront-backend/api/controllers"
	"github.com/hamperhouse/storefront-backend/api/routes"
	"github.com/hamperhouse/storefront-backend/internal/address"
	"github.com/hamperhouse/storefront-backend/internal/analytics"
	"github.com/hamperhouse/storefront-backend/internal/brands"
	"github.com/hamperhouse/storefront-backend/internal/cart"
	"github.com/hamperhouse/storefront-backend/internal/coupons"
	"github.com/hamperhouse/storefront-backend/internal/hamper"
	"github.com/hamperhouse/storefront-backend/internal/orders"
	"github.com/hamperhouse/storefront-backend/internal/pricing"
	product "github.com/hamperhouse/storefront-backend/internal/products"
	"github.com/hamperhouse/storefront-backend/internal/reviews"
	"github.com/hamperhouse/storefront-backend/internal/settings"
	"github.com/hamperhouse/storefront-backend/internal/wishlist"
	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
	"github.com/hamperhouse/storefront-backend/pkg/metrics"
	"github.com/hamperhouse/storefront-backend/pkg/migrate"
	pkgmongo "github.com/hamperhouse/storefront-backend/pkg/mongo"
	"github.com/hamperhouse/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	mongoClient, err := pkgmongo.New(ctx, cfg.Mongo, logg)
	requireResource(ctx, logg, "mongo", err)
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			logg.Error(context.Background(), "error closing mongo", err)
		}
	}()

	publisher, err := events.New(ctx, cfg, logg)
	requireResource(ctx, logg, "event publisher", err)
	defer func() {
		if err := publisher.Close(); err != nil {
			logg.Error(context.Background(), "error closing event publisher", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	gormDB := dbClient.DB()
	productRepo := product.NewRepository(gormDB)
	addressRepo := address.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)

	productSvc, err := product.NewService(productRepo, redisClient, publisher, product.WithDropRecorder(storefrontMetrics))
	requireResource(ctx, logg, "product service", err)

	brandSvc, err := brands.NewService(brands.NewRepository(gormDB))
	requireResource(ctx, logg, "brand service", err)

	couponSvc, err := coupons.NewService(coupons.NewRepository(gormDB))
	requireResource(ctx, logg, "coupon service", err)

	reviewSvc, err := reviews.NewService(reviews.NewRepository(gormDB))
	requireResource(ctx, logg, "review service", err)

	settingsSvc, err := settings.NewService(
		settings.NewRepository(gormDB),
		redisClient,
		pricing.SettingsFromConfig(cfg.Pricing),
		cfg.Pricing.SettingsCacheTTL,
		logg,
	)
	requireResource(ctx, logg, "settings service", err)

	resolver, err := cart.NewResolver(productRepo)
	requireResource(ctx, logg, "cart resolver", err)

	cartSvc, err := cart.NewService(cartRepo, resolver, productRepo, settingsSvc, pricing.GiftProduct{Name: cfg.Pricing.FreeGiftName})
	requireResource(ctx, logg, "cart service", err)

	wishlistSvc, err := wishlist.NewService(wishlist.NewRepository(gormDB), productRepo)
	requireResource(ctx, logg, "wishlist service", err)

	addressSvc, err := address.NewService(addressRepo, dbClient)
	requireResource(ctx, logg, "address service", err)

	orderSvc, err := orders.NewService(orders.Dependencies{
		Tx:        dbClient,
		Orders:    ordersRepo,
		Cart:      cartRepo,
		Products:  productRepo,
		Addresses: addressRepo,
		Settings:  settingsSvc,
		Publisher: publisher,
		Metrics:   storefrontMetrics,
		Logger:    logg,
	})
	requireResource(ctx, logg, "order service", err)

	analyticsSvc, err := analytics.NewService(ordersRepo)
	requireResource(ctx, logg, "analytics service", err)

	draftRepo, err := hamper.NewMongoRepository(mongoClient.DraftsCollection(), cfg.Hamper.DraftTTL)
	requireResource(ctx, logg, "hamper draft repository", err)
	if err := draftRepo.EnsureIndexes(ctx); err != nil {
		logg.Error(ctx, "failed to ensure hamper draft indexes", err)
		os.Exit(1)
	}

	hamperOpts := hamper.ServiceOptions{}
	if raw := strings.TrimSpace(cfg.Hamper.RoseProductID); raw != "" {
		roseID, err := uuid.Parse(raw)
		requireResource(ctx, logg, "hamper rose product id", err)
		hamperOpts.RoseProductID = roseID
	}
	hamperSvc, err := hamper.NewService(draftRepo, cartSvc, publisher, logg, hamperOpts)
	requireResource(ctx, logg, "hamper service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
		"eventing": cfg.Eventing.Normalized(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Dependencies{
			Config: cfg,
			Logger: logg,
			Pingers: map[string]controllers.Pinger{
				"postgres": dbClient,
				"redis":    redisClient,
				"mongo":    mongoClient,
			},
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			HTTPMetrics:    httpMetrics,
			RateLimiter:    redisClient,
			Idempotency:    redisClient,
			Products:       productSvc,
			Brands:         brandSvc,
			Coupons:        couponSvc,
			Reviews:        reviewSvc,
			Settings:       settingsSvc,
			Cart:           cartSvc,
			Wishlist:       wishlistSvc,
			Addresses:      addressSvc,
			Orders:         orderSvc,
			Hampers:        hamperSvc,
			Analytics:      analyticsSvc,
		}),
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to initialize "+name, err)
	os.Exit(1)
}
