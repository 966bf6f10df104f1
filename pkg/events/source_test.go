package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

func discardLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "events-test", Output: io.Discard})
}

func encodedEnvelope(t *testing.T, eventType enums.EventType) []byte {
	t.Helper()
	env, err := NewEnvelope(eventType, "key-1", "roses", nil, ProductTracked{Event: "view"})
	if err != nil {
		t.Fatalf("new envelope: %v", err)
	}
	body, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func TestDecodeEnvelopeFallsBackToAttributes(t *testing.T) {
	body := []byte(`{"version":1,"key":"k","data":{}}`)
	occurred := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	env, err := DecodeEnvelope(body, map[string]string{
		"event_id":    "evt-1",
		"event_type":  "order.placed",
		"occurred_at": occurred.Format(time.RFC3339Nano),
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.EventID != "evt-1" || env.Type != enums.EventOrderPlaced || !env.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected envelope %+v", env)
	}

	if _, err := DecodeEnvelope([]byte(`{"type":"order.placed"}`), nil); err == nil {
		t.Fatal("expected error without event id")
	}
	if _, err := DecodeEnvelope([]byte(`not json`), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestPubSubDeliverAcksPoisonAndNacksFailures(t *testing.T) {
	src := &PubSubSource{logg: discardLogger()}
	ok := func(context.Context, Envelope) error { return nil }
	failing := func(context.Context, Envelope) error { return errors.New("warehouse down") }

	if !src.deliver(context.Background(), "m1", []byte("garbage"), nil, failing) {
		t.Fatal("undecodable message should be acked")
	}
	body := encodedEnvelope(t, enums.EventOrderPlaced)
	if src.deliver(context.Background(), "m2", body, nil, failing) {
		t.Fatal("handler failure should be nacked")
	}
	if !src.deliver(context.Background(), "m3", body, nil, ok) {
		t.Fatal("handled message should be acked")
	}
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestKafkaSourceRetriesThenCommits(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: encodedEnvelope(t, enums.EventOrderPlaced)},
		{Offset: 2, Value: []byte("garbage")},
		{Offset: 3, Value: encodedEnvelope(t, enums.EventProductTracked)},
	}}
	src := &KafkaSource{reader: reader, logg: discardLogger(), retryDelay: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	var attempts = map[enums.EventType]int{}
	handle := func(_ context.Context, env Envelope) error {
		attempts[env.Type]++
		if env.Type == enums.EventOrderPlaced {
			return errors.New("warehouse down")
		}
		cancel()
		return nil
	}

	err := src.Receive(ctx, handle)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if attempts[enums.EventOrderPlaced] != kafkaMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", kafkaMaxAttempts, attempts[enums.EventOrderPlaced])
	}
	if attempts[enums.EventProductTracked] != 1 {
		t.Fatalf("expected telemetry handled once, got %d", attempts[enums.EventProductTracked])
	}
	if len(reader.committed) < 2 || reader.committed[0] != 1 || reader.committed[1] != 2 {
		t.Fatalf("unexpected commits %v", reader.committed)
	}
	if !reader.closed {
		t.Fatal("reader should be closed on exit")
	}
}

func TestKafkaSourceLeavesOffsetWhenCancelledMidRetry(t *testing.T) {
	reader := &fakeReader{msgs: []kafka.Message{
		{Offset: 7, Value: encodedEnvelope(t, enums.EventOrderPlaced)},
	}}
	src := &KafkaSource{reader: reader, logg: discardLogger(), retryDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	handle := func(context.Context, Envelope) error {
		cancel()
		return errors.New("warehouse down")
	}

	err := src.Receive(ctx, handle)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if len(reader.committed) != 0 {
		t.Fatalf("expected no commits, got %v", reader.committed)
	}
}

func TestNewKafkaSourceValidates(t *testing.T) {
	if _, err := NewKafkaSource(config.KafkaConfig{ConsumerGroup: "g"}, discardLogger()); err == nil {
		t.Fatal("expected error without brokers")
	}
	if _, err := NewKafkaSource(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, discardLogger()); err == nil {
		t.Fatal("expected error without consumer group")
	}
}
