package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorCheck(t *testing.T) {
	repo := NewMemoryRepository()
	m := NewMonitor(repo, 0)

	var changes []bool
	m.OnChange(func(connected bool) { changes = append(changes, connected) })

	assert.False(t, m.Connected())
	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.Connected())
	assert.Empty(t, m.LastError())

	repo.SetPingError(errors.New("connection refused"))
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Connected())
	assert.Contains(t, m.LastError(), "connection refused")

	// no flip, no callback
	m.Check(context.Background())

	repo.SetPingError(nil)
	m.Check(context.Background())

	assert.Equal(t, []bool{true, false, true}, changes)
}

func TestMonitorWithoutPinger(t *testing.T) {
	m := NewMonitor(nil, 0)
	assert.False(t, m.Check(context.Background()))
	assert.Equal(t, "no database configured", m.LastError())
}
