package service

import (
	"context"
	"log/slog"
	"time"
)

// DefaultReapInterval is how often expired sessions are purged.
const DefaultReapInterval = 24 * time.Hour

// ReapObserver is notified after every reap attempt.
type ReapObserver interface {
	ObserveReap(deleted int64, err error)
}

// Reaper periodically deletes expired sessions. Reaping only reclaims
// storage; expired sessions are already rejected by SessionManager.Resolve.
type Reaper struct {
	sessions *SessionManager
	interval time.Duration
	observer ReapObserver
}

// NewReaper creates a Reaper. The observer may be nil.
func NewReaper(sessions *SessionManager, interval time.Duration, observer ReapObserver) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{sessions: sessions, interval: interval, observer: observer}
}

// Run reaps once immediately and then on every tick until ctx is cancelled.
// It never returns an error; failures are logged and retried next tick.
func (r *Reaper) Run(ctx context.Context) {
	r.ReapOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session reaper stopped")
			return
		case <-ticker.C:
			r.ReapOnce(ctx)
		}
	}
}

// ReapOnce performs a single reap and reports how many sessions were removed.
func (r *Reaper) ReapOnce(ctx context.Context) int64 {
	n, err := r.sessions.ReapExpired(ctx)
	if r.observer != nil {
		r.observer.ObserveReap(n, err)
	}
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("reap expired sessions", "error", err)
		}
		return 0
	}
	if n > 0 {
		slog.Info("expired sessions reaped", "count", n)
	}
	return n
}
