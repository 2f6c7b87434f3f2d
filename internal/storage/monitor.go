package storage

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Pinger is the subset of Repository the monitor needs
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks database connectivity by pinging on an interval.
// Connected is read on every request, so it only touches an atomic flag.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration

	connected atomic.Bool
	lastErr   atomic.Value // string
	onChange  func(connected bool)
}

// NewMonitor creates a monitor; call Check or Start to populate the state
func NewMonitor(pinger Pinger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		timeout:  3 * time.Second,
	}
}

// OnChange registers a callback invoked whenever connectivity flips
func (m *Monitor) OnChange(fn func(connected bool)) {
	m.onChange = fn
}

// Connected reports the last observed connectivity
func (m *Monitor) Connected() bool {
	return m.connected.Load()
}

// LastError returns the message of the last failed ping, if any
func (m *Monitor) LastError() string {
	if v, ok := m.lastErr.Load().(string); ok {
		return v
	}
	return ""
}

// Check pings once and updates the state
func (m *Monitor) Check(ctx context.Context) bool {
	if m.pinger == nil {
		m.set(false, "no database configured")
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.pinger.Ping(pingCtx); err != nil {
		m.set(false, err.Error())
		return false
	}
	m.set(true, "")
	return true
}

func (m *Monitor) set(connected bool, errMsg string) {
	m.lastErr.Store(errMsg)
	if m.connected.Swap(connected) == connected {
		return
	}
	if connected {
		slog.Info("database connection established")
	} else {
		slog.Warn("database connection lost", "error", errMsg)
	}
	if m.onChange != nil {
		m.onChange(connected)
	}
}

// Start pings until ctx is cancelled
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
