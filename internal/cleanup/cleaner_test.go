package cleanup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReaper struct {
	mu         sync.Mutex
	retentions []time.Duration
	removed    int
}

func (r *recordingReaper) Reap(retention time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retentions = append(r.retentions, retention)
	return r.removed
}

func (r *recordingReaper) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.retentions)
}

func TestNewCleanerDefaults(t *testing.T) {
	c := NewCleaner(&recordingReaper{}, 0, -1)
	assert.Equal(t, time.Minute, c.interval)
	assert.Equal(t, 30*time.Minute, c.retention)
}

func TestCleanerRunsUntilCancelled(t *testing.T) {
	reaper := &recordingReaper{removed: 2}
	c := NewCleaner(reaper, 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return reaper.calls() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}

	reaper.mu.Lock()
	defer reaper.mu.Unlock()
	for _, r := range reaper.retentions {
		assert.Equal(t, time.Hour, r)
	}
}

func TestCleanupReturnsRemoved(t *testing.T) {
	c := NewCleaner(&recordingReaper{removed: 4}, time.Minute, time.Minute)
	assert.Equal(t, 4, c.cleanup())

	c = NewCleaner(&recordingReaper{}, time.Minute, time.Minute)
	assert.Zero(t, c.cleanup())
}
