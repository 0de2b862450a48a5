package service_test

import (
	"testing"
	"time"

	"github.com/gameforge/gameforge/internal/service"
)

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	tb := service.NewTokenBucket(1, 3, newFakeClock()) // rate=1/s, capacity=3
	defer tb.Close()

	// Should allow 3 requests immediately (full bucket).
	for i := 0; i < 3; i++ {
		if !tb.Allow("test-key") {
			t.Fatalf("request %d should be allowed (bucket not yet empty)", i+1)
		}
	}

	if tb.Allow("test-key") {
		t.Fatal("4th request should be denied (bucket empty)")
	}
}

func TestTokenBucket_DifferentKeysAreIndependent(t *testing.T) {
	tb := service.NewTokenBucket(1, 1, newFakeClock())
	defer tb.Close()

	if !tb.Allow("ip-a") {
		t.Fatal("ip-a first request should be allowed")
	}
	if tb.Allow("ip-a") {
		t.Fatal("ip-a second request should be denied")
	}
	if !tb.Allow("ip-b") {
		t.Fatal("ip-b first request should be allowed (independent bucket)")
	}
}

func TestTokenBucket_Refills(t *testing.T) {
	clock := newFakeClock()
	tb := service.NewTokenBucket(0.5, 1, clock) // one token every 2s
	defer tb.Close()

	if !tb.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if tb.Allow("k") {
		t.Fatal("second request should be denied before refill")
	}

	clock.Advance(time.Second)
	if tb.Allow("k") {
		t.Fatal("half a token is not enough")
	}

	clock.Advance(time.Second)
	if !tb.Allow("k") {
		t.Fatal("request should be allowed after a full refill")
	}
}

func TestTokenBucket_ZeroRateNeverRefills(t *testing.T) {
	clock := newFakeClock()
	tb := service.NewTokenBucket(0, 2, clock)
	defer tb.Close()

	tb.Allow("k")
	tb.Allow("k")
	clock.Advance(time.Hour)
	if tb.Allow("k") {
		t.Fatal("third request should be denied (no refill)")
	}
}

func TestTokenBucket_SweepDropsIdleBuckets(t *testing.T) {
	clock := newFakeClock()
	tb := service.NewTokenBucket(1, 1, clock)
	defer tb.Close()

	tb.Allow("old")
	clock.Advance(11 * time.Minute)
	tb.Allow("fresh")

	tb.Sweep()

	if n := tb.BucketCount(); n != 1 {
		t.Fatalf("expected 1 bucket after sweep, got %d", n)
	}
}

func TestTokenBucket_CloseIsIdempotent(t *testing.T) {
	tb := service.NewTokenBucket(1, 1, nil)
	tb.Close()
	tb.Close()
}
