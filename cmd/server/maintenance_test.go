package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	calls atomic.Int32
	at    atomic.Pointer[time.Time]
	err   error
}

func (f *fakeStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.calls.Add(1)
	f.at.Store(&now)
	return 2, f.err
}

type fakePurger struct {
	calls     atomic.Int32
	retention atomic.Int64
}

func (p *fakePurger) Purge(_ context.Context, retention time.Duration) (int64, error) {
	p.calls.Add(1)
	p.retention.Store(int64(retention))
	return 3, nil
}

func newTestJanitor(sessions, revoked *fakeStore, audit *fakePurger, now time.Time) *janitor {
	return &janitor{
		stores:    map[string]expiringStore{"refresh_tokens": sessions, "blacklisted_tokens": revoked},
		audit:     audit,
		retention: 48 * time.Hour,
		now:       func() time.Time { return now },
	}
}

func TestSweep_ContinuesPastFailures(t *testing.T) {
	now := time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)
	sessions := &fakeStore{err: errors.New("connection reset")}
	revoked := &fakeStore{}
	audit := &fakePurger{}

	newTestJanitor(sessions, revoked, audit, now).sweep(context.Background())

	assert.Equal(t, int32(1), sessions.calls.Load())
	assert.Equal(t, int32(1), revoked.calls.Load())
	assert.Equal(t, now, *revoked.at.Load())
	assert.Equal(t, int32(1), audit.calls.Load())
	assert.Equal(t, int64(48*time.Hour), audit.retention.Load())
}

func TestRun_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	sessions, revoked, audit := &fakeStore{}, &fakeStore{}, &fakePurger{}
	j := newTestJanitor(sessions, revoked, audit, time.Now())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		j.Run(ctx, time.Hour)
		close(done)
	}()

	assert.Eventually(t, func() bool { return audit.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRun_DisabledInterval(t *testing.T) {
	sessions := &fakeStore{}

	newTestJanitor(sessions, &fakeStore{}, &fakePurger{}, time.Now()).Run(context.Background(), 0)

	assert.Zero(t, sessions.calls.Load())
}
