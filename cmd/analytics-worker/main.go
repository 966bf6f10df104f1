package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/hamperhouse/storefront-backend/internal/consumers/analytics"
	"github.com/hamperhouse/storefront-backend/pkg/bigquery"
	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/events/dedupe"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
	"github.com/hamperhouse/storefront-backend/pkg/pubsub"
	"github.com/hamperhouse/storefront-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "analytics-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "analytics-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	requireResource(ctx, logg, "bigquery client", err)
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(ctx, "failed to close bigquery client", err)
		}
	}()

	guard, err := dedupe.NewGuard(redisClient, cfg.Eventing.DedupeTTL)
	requireResource(ctx, logg, "dedupe guard", err)

	consumer, err := analytics.NewConsumer(bqClient, analytics.Tables{
		OrderEvents:     bqClient.OrderEventsTable(),
		TelemetryEvents: bqClient.TelemetryEventsTable(),
	}, guard, logg)
	requireResource(ctx, logg, "analytics consumer", err)

	sources, closeSources, err := buildSources(ctx, cfg, logg)
	requireResource(ctx, logg, "event sources", err)
	defer closeSources()

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"eventing": cfg.Eventing.Normalized(),
		"sources":  len(sources),
	})
	logg.Info(runCtx, "analytics worker ready")

	g, gctx := errgroup.WithContext(runCtx)
	for _, source := range sources {
		g.Go(func() error {
			return source.Receive(gctx, consumer.Handle)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "analytics worker failed", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "analytics worker stopped")
}

func buildSources(ctx context.Context, cfg *config.Config, logg *logger.Logger) ([]events.Source, func(), error) {
	switch cfg.Eventing.Normalized() {
	case config.EventingDriverPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := client.Close(); err != nil {
				logg.Error(ctx, "failed to close pubsub client", err)
			}
		}
		orders, err := events.NewPubSubSource(client.OrdersSubscriber(), logg)
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("orders subscription: %w", err)
		}
		telemetry, err := events.NewPubSubSource(client.TelemetrySubscriber(), logg)
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("telemetry subscription: %w", err)
		}
		return []events.Source{orders, telemetry}, closer, nil
	case config.EventingDriverKafka:
		source, err := events.NewKafkaSource(cfg.Kafka, logg)
		if err != nil {
			return nil, nil, err
		}
		return []events.Source{source}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("eventing driver %q has nothing to consume", cfg.Eventing.Driver)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
