package service

import (
	"sync"
	"time"
)

// TokenBucket is an in-memory per-key rate limiter used to slow down
// credential guessing on the login and registration endpoints.
// It is safe for concurrent use. Idle buckets are dropped by a janitor
// goroutine that stops when Close is called.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64 // maximum tokens
	clock    Clock
	idle     time.Duration

	stop      chan struct{}
	closeOnce sync.Once
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter that allows bursts of up to capacity
// requests per key, refilling at rate tokens per second.
func NewTokenBucket(rate, capacity float64, clock Clock) *TokenBucket {
	if clock == nil {
		clock = SystemClock{}
	}
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		clock:    clock,
		idle:     10 * time.Minute,
		stop:     make(chan struct{}),
	}
	go tb.janitor(5 * time.Minute)
	return tb
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.clock.Now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = min(b.tokens+elapsed*tb.rate, tb.capacity)
	}
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Close stops the janitor goroutine.
func (tb *TokenBucket) Close() {
	tb.closeOnce.Do(func() { close(tb.stop) })
}

func (tb *TokenBucket) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-tb.stop:
			return
		case <-ticker.C:
			tb.sweep()
		}
	}
}

// sweep removes buckets that have not been touched for the idle period.
func (tb *TokenBucket) sweep() {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	cutoff := tb.clock.Now().Add(-tb.idle)
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}
