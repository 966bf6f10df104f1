package dedupe

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	claimed  map[string]bool
	err      error
	lastTTL  time.Duration
	released []string
}

func (f *fakeStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.claimed == nil {
		f.claimed = map[string]bool{}
	}
	f.lastTTL = ttl
	if f.claimed[key] {
		return false, nil
	}
	f.claimed[key] = true
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "hh:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.claimed, key)
		f.released = append(f.released, key)
	}
	return nil
}

func TestNewGuardValidates(t *testing.T) {
	if _, err := NewGuard(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewGuard(&fakeStore{}, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestClaimOnlyOnce(t *testing.T) {
	store := &fakeStore{}
	guard, err := NewGuard(store, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewGuard: %v", err)
	}

	first, err := guard.Claim(context.Background(), "analytics", "evt-1")
	if err != nil || !first {
		t.Fatalf("expected first claim, got %v %v", first, err)
	}
	again, err := guard.Claim(context.Background(), "analytics", "evt-1")
	if err != nil || again {
		t.Fatalf("expected duplicate, got %v %v", again, err)
	}
	other, err := guard.Claim(context.Background(), "notifications", "evt-1")
	if err != nil || !other {
		t.Fatalf("claims are per consumer, got %v %v", other, err)
	}
	if store.lastTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl %v", store.lastTTL)
	}
}

func TestReleaseAllowsRetry(t *testing.T) {
	store := &fakeStore{}
	guard, _ := NewGuard(store, time.Hour)

	if _, err := guard.Claim(context.Background(), "analytics", "evt-2"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := guard.Release(context.Background(), "analytics", "evt-2"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if store.released[0] != "hh:idempotency:evt:analytics:evt-2" {
		t.Fatalf("unexpected released key %q", store.released[0])
	}
	retry, err := guard.Claim(context.Background(), "analytics", "evt-2")
	if err != nil || !retry {
		t.Fatalf("expected claim after release, got %v %v", retry, err)
	}
}

func TestClaimErrors(t *testing.T) {
	guard, _ := NewGuard(&fakeStore{err: errors.New("boom")}, time.Hour)
	if _, err := guard.Claim(context.Background(), "analytics", "evt-3"); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := guard.Claim(context.Background(), "analytics", " "); err == nil {
		t.Fatal("expected error for blank event id")
	}
	if err := guard.Release(context.Background(), "", "evt-3"); err == nil {
		t.Fatal("expected error for blank consumer")
	}
}
