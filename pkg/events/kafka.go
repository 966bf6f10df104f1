package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"

	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes envelopes to Kafka, one writer per topic.
type KafkaPublisher struct {
	cfg       config.KafkaConfig
	logg      *logger.Logger
	newWriter func(topic string) messageWriter

	mu      sync.Mutex
	writers map[string]messageWriter
}

func NewKafkaPublisher(cfg config.KafkaConfig, logg *logger.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		cfg:     cfg,
		logg:    logg,
		writers: map[string]messageWriter{},
	}
	p.newWriter = func(topic string) messageWriter {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafka.RequireOne,
		}
	}
	return p
}

func (p *KafkaPublisher) topicFor(channel Channel) string {
	if channel == ChannelTelemetry {
		return p.cfg.TelemetryTopic
	}
	return p.cfg.OrdersTopic
}

func (p *KafkaPublisher) writer(topic string) messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := p.newWriter(topic)
	p.writers[topic] = w
	return w
}

func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	topic := p.topicFor(ChannelFor(env.Type))
	if topic == "" {
		return fmt.Errorf("kafka topic not configured for %s", env.Type)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	headers := make([]kafka.Header, 0, len(env.Attributes()))
	for k, v := range env.Attributes() {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	msg := kafka.Message{
		Key:     []byte(env.Key),
		Value:   body,
		Headers: headers,
	}
	if err := p.writer(topic).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", env.Type, topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	for topic, w := range p.writers {
		if cerr := w.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close writer %s: %w", topic, cerr))
		}
	}
	p.writers = map[string]messageWriter{}
	return err
}
