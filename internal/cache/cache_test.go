package cache

import (
	"context"
	"testing"
	"time"

	"futureflow/internal/core"
	"futureflow/internal/forecast"
)

func sampleWeeks() []forecast.WeekExposure {
	return []forecast.WeekExposure{
		{Index: 0, Start: core.NewDate(2025, 3, 3), End: core.NewDate(2025, 3, 9), Total: core.Money{Cents: 120_00}, HasExposure: true},
		{Index: 1, Start: core.NewDate(2025, 3, 10), End: core.NewDate(2025, 3, 16)},
	}
}

func TestMemoryForecastCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryForecastCache(time.Minute)

	if _, ok := c.Get(ctx, "2025-03-03"); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}

	if err := c.Set(ctx, "2025-03-03", sampleWeeks()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	weeks, ok := c.Get(ctx, "2025-03-03")
	if !ok {
		t.Fatal("Get() missed after Set()")
	}
	if len(weeks) != 2 || weeks[0].Total.Cents != 120_00 {
		t.Errorf("Get() = %+v, want the stored weeks", weeks)
	}

	if err := c.Purge(ctx); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if _, ok := c.Get(ctx, "2025-03-03"); ok {
		t.Error("Get() hit after Purge()")
	}
}

func TestLRUEviction(t *testing.T) {
	lru := NewLRUCache[int](2, time.Minute)

	lru.Set("a", 1)
	lru.Set("b", 2)
	lru.Set("c", 3)

	if _, ok := lru.Get("a"); ok {
		t.Error("oldest entry survived eviction")
	}
	if v, ok := lru.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v; want 3, true", v, ok)
	}
	if lru.Size() != 2 {
		t.Errorf("Size() = %d, want 2", lru.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	lru := NewLRUCache[int](4, time.Nanosecond)

	lru.Set("a", 1)
	time.Sleep(time.Millisecond)

	if _, ok := lru.Get("a"); ok {
		t.Error("expired entry still readable")
	}

	lru.Set("b", 2)
	time.Sleep(time.Millisecond)
	if n := lru.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
}

func TestNewBackendSelection(t *testing.T) {
	c, err := New(MemoryBackend, "", time.Minute)
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	if _, ok := c.(*MemoryForecastCache); !ok {
		t.Errorf("New(memory) = %T, want *MemoryForecastCache", c)
	}

	if _, err := New(Backend("sqlite"), "", time.Minute); err == nil {
		t.Error("New(sqlite) succeeded, want error")
	}
}
