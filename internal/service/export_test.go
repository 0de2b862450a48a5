package service

import "io"

// SetRandom replaces the token entropy source.
func (m *SessionManager) SetRandom(r io.Reader) {
	m.random = r
}

// Sweep exposes the idle-bucket sweep to tests.
func (tb *TokenBucket) Sweep() {
	tb.sweep()
}

// BucketCount reports how many keys are currently tracked.
func (tb *TokenBucket) BucketCount() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}
