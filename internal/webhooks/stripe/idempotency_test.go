package stripewebhook

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestIdempotencyGuard_FirstSeenThenDuplicate(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStoreStub(), time.Minute, "stripe-webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if seen {
		t.Fatal("first delivery must not read as processed")
	}

	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("check duplicate: %v", err)
	}
	if !seen {
		t.Fatal("duplicate delivery must read as processed")
	}
}

func TestIdempotencyGuard_DeleteAllowsRetry(t *testing.T) {
	guard, err := NewIdempotencyGuard(newStoreStub(), time.Minute, "stripe-webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}
	ctx := context.Background()

	if _, err := guard.CheckAndMark(ctx, "evt_retry"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := guard.Delete(ctx, "evt_retry"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	seen, err := guard.CheckAndMark(ctx, "evt_retry")
	if err != nil {
		t.Fatalf("recheck: %v", err)
	}
	if seen {
		t.Fatal("redelivery after failure must be processed again")
	}
}

func TestNewIdempotencyGuard_Validation(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Minute, "scope"); err == nil {
		t.Fatal("expected missing store to fail")
	}
	if _, err := NewIdempotencyGuard(newStoreStub(), time.Minute, ""); err == nil {
		t.Fatal("expected missing scope to fail")
	}
}

type storeStub struct {
	mu   sync.Mutex
	data map[string]string
}

func newStoreStub() *storeStub {
	return &storeStub{data: make(map[string]string)}
}

func (s *storeStub) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *storeStub) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *storeStub) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("ll:idempotency:%s:%s", scope, id)
}

func (s *storeStub) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
