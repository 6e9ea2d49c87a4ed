package gate

import (
	"sync"
	"time"
)

// Endpoint classes. The heavy class covers LLM-backed routes and carries a
// far stricter budget than the light list routes.
const (
	EndpointLight = "light"
	EndpointHeavy = "heavy"
)

// Limiter admits requests under a trailing sliding window, counted per
// (client, endpoint) key. Each endpoint class carries its own budget.
type Limiter struct {
	window  time.Duration
	budgets map[string]int
	now     func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewLimiter(window time.Duration, budgets map[string]int) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		window:  window,
		budgets: budgets,
		now:     time.Now,
		hits:    map[string][]time.Time{},
	}
}

// Allow records and admits the request unless the client already spent the
// endpoint's budget within the trailing window. Denials are not recorded.
func (l *Limiter) Allow(client, endpoint string) bool {
	max, ok := l.budgets[endpoint]
	if !ok || max <= 0 {
		return false
	}
	now := l.now()
	cutoff := now.Add(-l.window)
	key := client + "|" + endpoint

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.hits[key]
	// Stamps are appended in time order, so expired entries sit at the front.
	evict := 0
	for evict < len(stamps) && !stamps[evict].After(cutoff) {
		evict++
	}
	if evict > 0 {
		stamps = append(stamps[:0], stamps[evict:]...)
	}
	if len(stamps) >= max {
		l.hits[key] = stamps
		return false
	}
	l.hits[key] = append(stamps, now)
	return true
}
