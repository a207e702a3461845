package gamification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRemote struct {
	mu    sync.Mutex
	snaps []ProfileSnapshot
	errs  []error
}

func (r *recordingRemote) UpsertProfile(_ context.Context, snap ProfileSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snaps = append(r.snaps, snap)
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}
	return nil
}

func (r *recordingRemote) all() []ProfileSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProfileSnapshot(nil), r.snaps...)
}

func observerChan(ch chan error) func(string, error) {
	return func(_ string, err error) {
		ch <- err
	}
}

func TestSyncerSchedulesCoalesce(t *testing.T) {
	remote := &recordingRemote{}
	done := make(chan error, 4)
	s := newSyncer("device:abc", remote, 25*time.Millisecond, observerChan(done))
	defer s.Stop()

	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 10})
	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 20})
	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 30})

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sync")
	}

	snaps := remote.all()
	require.Len(t, snaps, 1)
	assert.Equal(t, 30, snaps[0].TotalXP)
}

func TestSyncerFlushDeliversImmediately(t *testing.T) {
	remote := &recordingRemote{}
	s := newSyncer("device:abc", remote, time.Hour, nil)
	defer s.Stop()

	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 50})
	s.Flush()

	snaps := remote.all()
	require.Len(t, snaps, 1)
	assert.Equal(t, 50, snaps[0].TotalXP)

	// Pending was consumed, a second flush is a no-op.
	s.Flush()
	assert.Len(t, remote.all(), 1)
}

func TestSyncerFlushWithoutPendingIsNoOp(t *testing.T) {
	remote := &recordingRemote{}
	s := newSyncer("device:abc", remote, time.Hour, nil)
	defer s.Stop()

	s.Flush()
	assert.Empty(t, remote.all())
}

func TestSyncerRetriesFailedDelivery(t *testing.T) {
	remote := &recordingRemote{errs: []error{errors.New("connection refused")}}
	done := make(chan error, 4)
	s := newSyncer("device:abc", remote, 20*time.Millisecond, observerChan(done))
	defer s.Stop()

	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 40})

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first attempt")
	}
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retry")
	}

	snaps := remote.all()
	require.Len(t, snaps, 2)
	assert.Equal(t, 40, snaps[1].TotalXP)
}

func TestSyncerNewerSnapshotSupersedesRetry(t *testing.T) {
	remote := &recordingRemote{errs: []error{errors.New("connection refused")}}
	s := newSyncer("device:abc", remote, time.Hour, nil)
	defer s.Stop()

	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 10})
	// The failed flush requeues the snapshot, then a newer schedule
	// replaces it before the retry runs.
	s.Flush()
	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 20})
	s.Flush()

	snaps := remote.all()
	require.Len(t, snaps, 2)
	assert.Equal(t, 10, snaps[0].TotalXP)
	assert.Equal(t, 20, snaps[1].TotalXP)
}

func TestSyncerStopDropsPending(t *testing.T) {
	remote := &recordingRemote{}
	s := newSyncer("device:abc", remote, 10*time.Millisecond, nil)

	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 10})
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, remote.all())

	// Stopped syncers ignore further schedules.
	s.Schedule(ProfileSnapshot{Identity: "device:abc", TotalXP: 20})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, remote.all())
}
