package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute, WithClock(clock.Now))
	c.Set("k", "v")

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected entry before ttl")
	}
	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestLRUCacheSlidingExpiration(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute, WithClock(clock.Now), WithSlidingExpiration())
	c.Set("k", "v")

	for i := 0; i < 5; i++ {
		clock.Advance(50 * time.Second)
		if _, ok := c.Get("k"); !ok {
			t.Fatalf("expected entry to stay alive on access %d", i)
		}
	}
	clock.Advance(61 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected idle entry to expire")
	}
}

func TestLRUCacheCleanExpiredAndPurge(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[int](10, time.Minute, WithClock(clock.Now))
	c.Set("a", 1)
	clock.Advance(30 * time.Second)
	c.Set("b", 2)
	clock.Advance(45 * time.Second)

	j := NewJanitor()
	j.Register("test", c)
	if n := j.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size() after Purge = %d", c.Size())
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after Purge = %d, %v", v, ok)
	}
}

func TestJanitorStartStop(t *testing.T) {
	j := NewJanitor()
	j.Register("empty", NewLRUCache[int](1, time.Second))
	j.Start(time.Millisecond)
	j.Stop()
	j.Stop()
}
