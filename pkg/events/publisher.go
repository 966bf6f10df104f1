package events

import (
	"context"
	"fmt"

	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
	"github.com/hamperhouse/storefront-backend/pkg/pubsub"
)

// Publisher delivers envelopes to the configured event bus.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Noop drops every event. Used when the eventing driver is "none".
type Noop struct{}

func (Noop) Publish(context.Context, Envelope) error { return nil }
func (Noop) Close() error                            { return nil }

// New builds the publisher selected by cfg.Eventing.Driver.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	switch cfg.Eventing.Normalized() {
	case config.EventingDriverNone:
		return Noop{}, nil
	case config.EventingDriverPubSub:
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, err
		}
		return NewPubSubPublisher(client, logg), nil
	case config.EventingDriverKafka:
		return NewKafkaPublisher(cfg.Kafka, logg), nil
	}
	return nil, fmt.Errorf("unknown eventing driver %q", cfg.Eventing.Driver)
}
