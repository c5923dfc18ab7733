package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pool-stats-lab/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_SetAndGet(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "rows", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, "rows")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("Expected payload, got %q", got)
	}
}

func TestCache_Miss(t *testing.T) {
	cache := NewCache()

	_, err := cache.Get(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCache_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_714_521_600, 0)}
	cache := NewCacheWithClock(clock.Now)
	ctx := context.Background()

	if err := cache.Set(ctx, "rows", []byte("v"), 5*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(5*time.Minute - time.Second)
	if _, err := cache.Get(ctx, "rows"); err != nil {
		t.Fatalf("Expected hit before expiry, got %v", err)
	}

	clock.Advance(time.Second)
	if _, err := cache.Get(ctx, "rows"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound at expiry, got %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Expected expired entry to be evicted, %d left", cache.Len())
	}
}

func TestCache_NoTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	cache := NewCacheWithClock(clock.Now)
	ctx := context.Background()

	if err := cache.Set(ctx, "rows", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	clock.Advance(365 * 24 * time.Hour)

	if _, err := cache.Get(ctx, "rows"); err != nil {
		t.Errorf("Expected hit without ttl, got %v", err)
	}
}

func TestCache_ReturnsCopies(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	value := []byte("abc")
	if err := cache.Set(ctx, "k", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	got[1] = 'y'

	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Stored value mutated: %q", again)
	}
}

func TestCache_Delete(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), 0)
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Errorf("Deleting a missing key should not fail: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestCache_EmptyKey(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "", []byte("v"), 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := cache.Get(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
