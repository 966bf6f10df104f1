package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/segmentio/kafka-go"

	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

// Handler processes one decoded envelope. A returned error asks the source
// to redeliver the message.
type Handler func(ctx context.Context, env Envelope) error

// Source delivers envelopes from the event bus until ctx is cancelled.
type Source interface {
	Receive(ctx context.Context, handle Handler) error
}

// DecodeEnvelope parses a message body. Missing ids and types fall back to
// the transport attributes.
func DecodeEnvelope(body []byte, attrs map[string]string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == "" {
		env.EventID = strings.TrimSpace(attrs["event_id"])
	}
	if env.Type == "" {
		env.Type = enums.EventType(strings.TrimSpace(attrs["event_type"]))
	}
	if env.EventID == "" {
		return Envelope{}, errors.New("event id missing")
	}
	if env.Type == "" {
		return Envelope{}, errors.New("event type missing")
	}
	if env.OccurredAt.IsZero() {
		if raw := strings.TrimSpace(attrs["occurred_at"]); raw != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
				env.OccurredAt = parsed
			}
		}
	}
	env.OccurredAt = env.OccurredAt.UTC()
	return env, nil
}

type pubsubReceiver interface {
	Receive(ctx context.Context, f func(context.Context, *gcppubsub.Message)) error
}

// PubSubSource reads one Pub/Sub subscription. Undecodable messages are
// acked so they do not loop; handler failures are nacked.
type PubSubSource struct {
	sub  pubsubReceiver
	logg *logger.Logger
}

func NewPubSubSource(sub *gcppubsub.Subscriber, logg *logger.Logger) (*PubSubSource, error) {
	if sub == nil {
		return nil, errors.New("pubsub subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &PubSubSource{sub: sub, logg: logg}, nil
}

func (s *PubSubSource) Receive(ctx context.Context, handle Handler) error {
	return s.sub.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.deliver(innerCtx, msg.ID, msg.Data, msg.Attributes, handle) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

func (s *PubSubSource) deliver(ctx context.Context, messageID string, body []byte, attrs map[string]string, handle Handler) bool {
	ctx = s.logg.WithField(ctx, "message_id", messageID)
	env, err := DecodeEnvelope(body, attrs)
	if err != nil {
		s.logg.WarnErr(ctx, "dropping undecodable event", err)
		return true
	}
	if err := handle(ctx, env); err != nil {
		s.logg.Error(ctx, "event handler failed", err)
		return false
	}
	return true
}

type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	kafkaMaxAttempts = 3
	kafkaRetryDelay  = time.Second
)

// KafkaSource reads the orders and telemetry topics with one consumer group.
// Kafka has no per-message nack, so a failing message is retried in place
// and committed after the last attempt.
type KafkaSource struct {
	reader     kafkaReader
	logg       *logger.Logger
	retryDelay time.Duration
}

func NewKafkaSource(cfg config.KafkaConfig, logg *logger.Logger) (*KafkaSource, error) {
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.ConsumerGroup) == "" {
		return nil, errors.New("kafka consumer group is required")
	}
	topics := []string{}
	for _, topic := range []string{cfg.OrdersTopic, cfg.TelemetryTopic} {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	if len(topics) == 0 {
		return nil, errors.New("kafka topic is required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})
	return &KafkaSource{reader: reader, logg: logg, retryDelay: kafkaRetryDelay}, nil
}

func (s *KafkaSource) Receive(ctx context.Context, handle Handler) error {
	defer func() {
		if err := s.reader.Close(); err != nil {
			s.logg.WarnErr(ctx, "closing kafka reader", err)
		}
	}()

	for {
		msg, err := s.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch kafka message: %w", err)
		}

		if !s.deliver(ctx, msg, handle) {
			return ctx.Err()
		}

		if err := s.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("commit kafka message: %w", err)
		}
	}
}

// deliver reports whether the message may be committed. It returns false
// only when ctx ends mid-retry, leaving the offset for redelivery.
func (s *KafkaSource) deliver(ctx context.Context, msg kafka.Message, handle Handler) bool {
	attrs := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		attrs[h.Key] = string(h.Value)
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	env, err := DecodeEnvelope(msg.Value, attrs)
	if err != nil {
		s.logg.WarnErr(ctx, "dropping undecodable event", err)
		return true
	}

	for attempt := 1; attempt <= kafkaMaxAttempts; attempt++ {
		err = handle(ctx, env)
		if err == nil {
			return true
		}
		if attempt == kafkaMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(s.retryDelay):
		}
	}
	s.logg.Error(s.logg.WithField(ctx, "event_id", env.EventID), "event dropped after retries", err)
	return true
}
