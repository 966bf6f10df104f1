// Package dedupe remembers which events a consumer has already handled so
// that redelivered messages are acknowledged without side effects.
package dedupe

import (
	"context"
	"errors"
	"strings"
	"time"
)

type store interface {
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	Del(context.Context, ...string) error
}

// Guard claims event ids per consumer with SETNX and a TTL. Keys look like
// `hh:idempotency:evt:<consumer>:<event_id>`.
type Guard struct {
	store store
	ttl   time.Duration
}

func NewGuard(store store, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("dedupe store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("dedupe ttl must be positive")
	}
	return &Guard{store: store, ttl: ttl}, nil
}

// Claim reports whether this call is the first to see eventID for consumer.
// A false result means the event was handled (or is being handled) already.
func (g *Guard) Claim(ctx context.Context, consumer, eventID string) (bool, error) {
	key, err := g.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return g.store.SetNX(ctx, key, "1", g.ttl)
}

// Release forgets a claim so a failed event can be retried on redelivery.
func (g *Guard) Release(ctx context.Context, consumer, eventID string) error {
	key, err := g.key(consumer, eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) key(consumer, eventID string) (string, error) {
	consumer = strings.TrimSpace(consumer)
	eventID = strings.TrimSpace(eventID)
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey("evt:"+consumer, eventID), nil
}
