package gate

import (
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.current }
func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestLimiter(clock *fakeClock, budgets map[string]int) *Limiter {
	l := NewLimiter(time.Minute, budgets)
	l.now = clock.Now
	return l
}

func TestLimiter_DeniesBeyondBudget(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, map[string]int{EndpointHeavy: 5})

	for i := 0; i < 5; i++ {
		if !l.Allow("1.2.3.4", EndpointHeavy) {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4", EndpointHeavy) {
		t.Fatalf("6th request allowed, want denied")
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, map[string]int{EndpointHeavy: 5})

	for i := 0; i < 5; i++ {
		l.Allow("1.2.3.4", EndpointHeavy)
		clock.Advance(10 * time.Second)
	}
	// 50s elapsed, all five stamps still inside the window.
	if l.Allow("1.2.3.4", EndpointHeavy) {
		t.Fatalf("request inside full window allowed, want denied")
	}
	// Pushing past the first stamp frees one slot.
	clock.Advance(11 * time.Second)
	if !l.Allow("1.2.3.4", EndpointHeavy) {
		t.Fatalf("request after window slid denied, want allowed")
	}
	if l.Allow("1.2.3.4", EndpointHeavy) {
		t.Fatalf("second request after single slot freed allowed, want denied")
	}
}

func TestLimiter_DenialsNotRecorded(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, map[string]int{EndpointLight: 2})

	l.Allow("c", EndpointLight)
	l.Allow("c", EndpointLight)
	for i := 0; i < 10; i++ {
		if l.Allow("c", EndpointLight) {
			t.Fatalf("over-budget request allowed")
		}
	}
	// Denied attempts must not extend the lockout.
	clock.Advance(time.Minute + time.Second)
	if !l.Allow("c", EndpointLight) {
		t.Fatalf("request after window expiry denied, want allowed")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock, map[string]int{EndpointLight: 1, EndpointHeavy: 1})

	if !l.Allow("a", EndpointLight) {
		t.Fatalf("first request for client a denied")
	}
	if l.Allow("a", EndpointLight) {
		t.Fatalf("budget shared across requests not enforced")
	}
	// Other clients and other endpoint classes are untouched.
	if !l.Allow("b", EndpointLight) {
		t.Fatalf("client b throttled by client a's usage")
	}
	if !l.Allow("a", EndpointHeavy) {
		t.Fatalf("heavy budget consumed by light usage")
	}
}

func TestLimiter_UnknownEndpointDenied(t *testing.T) {
	l := NewLimiter(time.Minute, map[string]int{EndpointLight: 10})
	if l.Allow("a", "mystery") {
		t.Fatalf("unknown endpoint class allowed")
	}
}
