package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hamperhouse/storefront-backend/internal/cart"
	"github.com/hamperhouse/storefront-backend/internal/coupons"
	"github.com/hamperhouse/storefront-backend/internal/maintenance"
	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
	"github.com/hamperhouse/storefront-backend/pkg/metrics"
	"github.com/hamperhouse/storefront-backend/pkg/redis"
)

const lockKeyFormat = "hh:maintenance-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "maintenance-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "maintenance-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	lock, err := maintenance.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Maintenance.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create maintenance lock", err)
		os.Exit(1)
	}

	couponJob, err := maintenance.NewCouponExpiryJob(coupons.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create coupon expiry job", err)
		os.Exit(1)
	}
	cartJob, err := maintenance.NewCartPurgeJob(cart.NewRepository(dbClient.DB()), cfg.Maintenance.CartRetention)
	if err != nil {
		logg.Error(ctx, "failed to create cart purge job", err)
		os.Exit(1)
	}

	service, err := maintenance.NewService(maintenance.ServiceParams{
		Logger:   logg,
		Jobs:     []maintenance.Job{couponJob, cartJob},
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Maintenance.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create maintenance service", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Maintenance.Interval.String(),
	})
	logg.Info(ctx, "starting maintenance worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "maintenance worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "maintenance worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
