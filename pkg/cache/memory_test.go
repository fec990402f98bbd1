package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCacheRoundTripTyped(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type rate struct {
		Value  float64 `json:"value"`
		Source string  `json:"source"`
	}
	if err := mc.Set(ctx, "rate:USD:INR", rate{Value: 83.25, Source: "live"}, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got rate
	if err := mc.Get(ctx, "rate:USD:INR", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != 83.25 || got.Source != "live" {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryClock(clk.Now))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", 1, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	clk.Advance(59 * time.Minute)
	var v int
	if err := mc.Get(ctx, "k", &v); err != nil || v != 1 {
		t.Fatalf("expected hit before expiry, got %v err=%v", v, err)
	}
	clk.Advance(2 * time.Minute)
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("expired entry should be dropped on read")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clk.Now))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "A", 0)
	clk.Advance(time.Second)
	_ = mc.Set(ctx, "b", "B", 0)
	clk.Advance(time.Second)

	var s string
	if err := mc.Get(ctx, "a", &s); err != nil {
		t.Fatalf("get a: %v", err)
	}
	clk.Advance(time.Second)
	_ = mc.Set(ctx, "c", "C", 0)

	if err := mc.Get(ctx, "b", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	for _, k := range []string{"a", "c"} {
		if err := mc.Get(ctx, k, &s); err != nil {
			t.Fatalf("expected %s present: %v", k, err)
		}
	}
}

func TestMemoryCacheOverwriteDoesNotEvict(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(1))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", 1, 0)
	_ = mc.Set(ctx, "a", 2, 0)
	var v int
	if err := mc.Get(ctx, "a", &v); err != nil || v != 2 {
		t.Fatalf("expected overwrite, got %v err=%v", v, err)
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	if got := GenerateKeyWithParams("rate", "USD", "INR"); got != "rate:USD:INR" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := GenerateKey("export", "abc"); got != "export:abc" {
		t.Fatalf("unexpected key %q", got)
	}
}
