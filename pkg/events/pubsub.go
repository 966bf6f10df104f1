package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"go.uber.org/multierr"

	"github.com/hamperhouse/storefront-backend/pkg/logger"
	"github.com/hamperhouse/storefront-backend/pkg/pubsub"
)

const defaultPublishTimeout = 10 * time.Second

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
	Stop()
}

// PubSubPublisher sends envelopes to Google Pub/Sub topics.
type PubSubPublisher struct {
	topics map[Channel]topicPublisher
	closer func() error
	logg   *logger.Logger
}

// NewPubSubPublisher wires the orders and telemetry topics of client.
func NewPubSubPublisher(client *pubsub.Client, logg *logger.Logger) *PubSubPublisher {
	topics := map[Channel]topicPublisher{}
	if p := newGCPPublisher(client.OrdersPublisher()); p != nil {
		topics[ChannelOrders] = p
	}
	if p := newGCPPublisher(client.TelemetryPublisher()); p != nil {
		topics[ChannelTelemetry] = p
	}
	return &PubSubPublisher{topics: topics, closer: client.Close, logg: logg}
}

func (p *PubSubPublisher) Publish(ctx context.Context, env Envelope) error {
	channel := ChannelFor(env.Type)
	pub, ok := p.topics[channel]
	if !ok {
		return fmt.Errorf("publisher not configured for channel %s", channel)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := &gcppubsub.Message{
		Data:       body,
		Attributes: env.Attributes(),
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, msg)
	if result == nil {
		return fmt.Errorf("publisher returned nil for channel %s", channel)
	}
	if _, err := result.Get(publishCtx); err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	if p.logg != nil {
		p.logg.Debug(p.logg.WithFields(ctx, map[string]any{
			"event_id":   env.EventID,
			"event_type": string(env.Type),
			"channel":    string(channel),
		}), "event published")
	}
	return nil
}

func (p *PubSubPublisher) Close() error {
	for _, pub := range p.topics {
		pub.Stop()
	}
	var err error
	if p.closer != nil {
		err = multierr.Append(err, p.closer())
	}
	return err
}

func newGCPPublisher(p *gcppubsub.Publisher) topicPublisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{PublishResult: p.Publisher.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	return r.PublishResult.Get(ctx)
}
