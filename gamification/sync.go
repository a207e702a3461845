package gamification

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const remoteTimeout = 5 * time.Second

// syncer debounces remote writes for one identity. There is a single
// outstanding timer; scheduling replaces the pending snapshot so only the
// most recent state is ever sent. A failed push re-arms the timer, which
// is the retry path.
type syncer struct {
	identity string
	remote   RemoteStore
	delay    time.Duration
	observer func(identity string, err error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *ProfileSnapshot
	stopped bool
}

func newSyncer(identity string, remote RemoteStore, delay time.Duration, observer func(string, error)) *syncer {
	return &syncer{
		identity: identity,
		remote:   remote,
		delay:    delay,
		observer: observer,
	}
}

// Schedule coalesces the snapshot into the pending write and resets the
// debounce timer.
func (s *syncer) Schedule(snap ProfileSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.pending = &snap
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Flush sends the pending snapshot immediately, bypassing the debounce.
// Used on teardown so the final state is not lost.
func (s *syncer) Flush() {
	s.deliver(s.take())
}

func (s *syncer) fire() {
	s.deliver(s.take())
}

func (s *syncer) take() *ProfileSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return snap
}

func (s *syncer) deliver(snap *ProfileSnapshot) {
	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	err := s.remote.UpsertProfile(ctx, *snap)
	if s.observer != nil {
		s.observer(s.identity, err)
	}
	if err == nil {
		return
	}

	log.WithError(err).WithField("identity", s.identity).Warn("Remote profile sync failed, will retry")

	// Requeue unless a newer snapshot arrived while we were pushing.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.pending != nil {
		return
	}
	s.pending = snap
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Stop cancels the timer and drops any pending write. Callers that care
// about the final state should Flush first.
func (s *syncer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
