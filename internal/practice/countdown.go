package practice

import (
	"context"
	"sync"
	"time"
)

// Countdown is a restartable timer owned by one session. Each Start issues
// a new token; the expiry callback receives the token of the run that
// expired so the owner can ignore runs it has already replaced.
type Countdown struct {
	mu       sync.Mutex
	total    time.Duration
	tick     time.Duration
	onTick   func(remaining time.Duration)
	onExpire func(token uint64)

	token    uint64
	deadline time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCountdown creates a stopped countdown. onTick and onExpire may be nil.
// Callbacks run on the countdown goroutine without the countdown lock held.
func NewCountdown(total, tick time.Duration, onTick func(time.Duration), onExpire func(uint64)) *Countdown {
	if tick <= 0 {
		tick = time.Second
	}
	return &Countdown{total: total, tick: tick, onTick: onTick, onExpire: onExpire}
}

// Start (re)starts the countdown from its full duration and returns the run token
func (c *Countdown) Start() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	c.token++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.deadline = time.Now().Add(c.total)
	c.done = make(chan struct{})

	go c.run(ctx, c.token, c.deadline, c.done)
	return c.token
}

// Stop cancels the current run. It reports whether a run was active.
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *Countdown) stopLocked() bool {
	if c.cancel == nil {
		return false
	}
	c.cancel()
	c.cancel = nil
	c.deadline = time.Time{}
	return true
}

// Running reports whether a run is active
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Remaining returns the time left in the current run, or zero when stopped
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		return 0
	}
	return max(time.Until(c.deadline), 0)
}

// Total returns the configured duration
func (c *Countdown) Total() time.Duration {
	return c.total
}

// Done returns a channel closed when the current run's goroutine exits
func (c *Countdown) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.done
}

func (c *Countdown) run(ctx context.Context, token uint64, deadline time.Time, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.onTick != nil {
				c.onTick(max(time.Until(deadline), 0))
			}
		case <-timer.C:
			c.mu.Lock()
			current := c.token == token && c.cancel != nil
			if current {
				c.cancel()
				c.cancel = nil
				c.deadline = time.Time{}
			}
			c.mu.Unlock()

			if current && c.onExpire != nil {
				c.onExpire(token)
			}
			return
		}
	}
}
