package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Reaper drops finished sessions older than a retention window
type Reaper interface {
	Reap(retention time.Duration) int
}

// Cleaner handles periodic cleanup of finished practice sessions
type Cleaner struct {
	reaper    Reaper
	interval  time.Duration
	retention time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(reaper Reaper, interval, retention time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Minute
	}
	if retention <= 0 {
		retention = 30 * time.Minute
	}

	return &Cleaner{
		reaper:    reaper,
		interval:  interval,
		retention: retention,
	}
}

// Run is the main loop for the cleanup worker. It blocks until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval, "retention", c.retention)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup reaps sessions that finished before the retention window
func (c *Cleaner) cleanup() int {
	slog.Debug("running cleanup cycle")

	removed := c.reaper.Reap(c.retention)
	if removed == 0 {
		slog.Debug("no finished sessions to reap")
		return 0
	}

	slog.Info("reaped finished practice sessions", "count", removed)
	return removed
}
