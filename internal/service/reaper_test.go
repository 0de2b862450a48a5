package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameforge/gameforge/internal/domain"
	"github.com/gameforge/gameforge/internal/service"
)

type recordingObserver struct {
	mu      sync.Mutex
	calls   int
	deleted int64
	errs    int
}

func (o *recordingObserver) ObserveReap(deleted int64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	o.deleted += deleted
	if err != nil {
		o.errs++
	}
}

func (o *recordingObserver) snapshot() (int, int64, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls, o.deleted, o.errs
}

func TestReaper_ReapOnceRemovesOnlyExpired(t *testing.T) {
	env := newTestAuthService(t)
	ctx := context.Background()
	userID := register(t, env.auth, "alice", "a@x.com", "secret1")
	sessions := env.auth.Sessions()

	_, err := sessions.Create(ctx, userID, false)
	require.NoError(t, err)
	remembered, err := sessions.Create(ctx, userID, true)
	require.NoError(t, err)

	env.clock.Advance(2 * 24 * time.Hour)

	obs := &recordingObserver{}
	reaper := service.NewReaper(sessions, time.Hour, obs)
	assert.Equal(t, int64(1), reaper.ReapOnce(ctx))

	_, err = sessions.Resolve(ctx, remembered.Token)
	require.NoError(t, err)

	calls, deleted, errs := obs.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), deleted)
	assert.Zero(t, errs)
}

// failingSessions makes every reap fail.
type failingSessions struct {
	domain.SessionRepository
}

func (failingSessions) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk on fire")
}

func TestReaper_FailureIsSwallowed(t *testing.T) {
	sessions := service.NewSessionManager(failingSessions{}, service.SessionPolicy{}, newFakeClock())
	obs := &recordingObserver{}
	reaper := service.NewReaper(sessions, time.Hour, obs)

	assert.Zero(t, reaper.ReapOnce(context.Background()))

	_, _, errs := obs.snapshot()
	assert.Equal(t, 1, errs)
}

func TestReaper_RunReapsAtStartAndStopsOnCancel(t *testing.T) {
	env := newTestAuthService(t)
	obs := &recordingObserver{}
	reaper := service.NewReaper(env.auth.Sessions(), 10*time.Millisecond, obs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		calls, _, _ := obs.snapshot()
		return calls >= 2
	}, 2*time.Second, 5*time.Millisecond, "expected an initial reap and at least one tick")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not stop after cancellation")
	}
}
