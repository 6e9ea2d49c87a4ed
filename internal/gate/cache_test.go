package gate

import (
	"testing"
	"time"

	"polysim/internal/market"
)

func newTestCache(clock *fakeClock, ttl time.Duration) *Cache {
	c := NewCache(ttl)
	c.now = clock.Now
	return c
}

func batch(ids ...string) []market.Scored {
	out := make([]market.Scored, 0, len(ids))
	for _, id := range ids {
		out = append(out, market.Scored{Snapshot: market.Snapshot{ID: id}})
	}
	return out
}

func TestCache_MissWhenEmpty(t *testing.T) {
	c := newTestCache(newFakeClock(), time.Minute)
	if _, _, ok := c.Get("k"); ok {
		t.Fatalf("empty cache reported a hit")
	}
}

func TestCache_FreshWithinTTL(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, time.Minute)

	c.Put("k", batch("a", "b"))
	clock.Advance(59 * time.Second)

	data, fresh, ok := c.Get("k")
	if !ok || !fresh {
		t.Fatalf("ok=%v fresh=%v want both true", ok, fresh)
	}
	if len(data) != 2 || data[0].ID != "a" {
		t.Fatalf("unexpected cached data: %+v", data)
	}
}

func TestCache_StaleAfterTTL(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, time.Minute)

	c.Put("k", batch("a"))
	clock.Advance(time.Minute)

	data, fresh, ok := c.Get("k")
	if !ok {
		t.Fatalf("expired entry evicted, want it retained for fallback")
	}
	if fresh {
		t.Fatalf("expired entry reported fresh")
	}
	if len(data) != 1 || data[0].ID != "a" {
		t.Fatalf("unexpected stale data: %+v", data)
	}
}

func TestCache_PutReplacesEntry(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock, time.Minute)

	c.Put("k", batch("old"))
	clock.Advance(2 * time.Minute)
	c.Put("k", batch("new"))

	data, fresh, ok := c.Get("k")
	if !ok || !fresh {
		t.Fatalf("ok=%v fresh=%v want both true after replace", ok, fresh)
	}
	if len(data) != 1 || data[0].ID != "new" {
		t.Fatalf("unexpected data after replace: %+v", data)
	}
}

func TestCache_KeysAreIndependent(t *testing.T) {
	c := newTestCache(newFakeClock(), time.Minute)

	c.Put("limit=10|title=", batch("a"))
	c.Put("limit=10|title=fed", batch("b"))

	data, _, _ := c.Get("limit=10|title=fed")
	if len(data) != 1 || data[0].ID != "b" {
		t.Fatalf("wrong entry for filtered key: %+v", data)
	}
}
