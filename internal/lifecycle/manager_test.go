package lifecycle

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInOrder(t *testing.T) {
	m := NewManager(time.Hour, func() time.Duration { return 0 })

	var order []int
	m.OnShutdown(func() { order = append(order, 1) })
	m.OnShutdown(func() { order = append(order, 2) })
	m.OnShutdown(func() { order = append(order, 3) })

	m.Shutdown()

	assert.Equal(t, []int{1, 2, 3}, order)
	select {
	case <-m.Done():
	default:
		t.Fatal("Done() not closed after Shutdown")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := NewManager(time.Hour, func() time.Duration { return 0 })

	var calls int32
	m.OnShutdown(func() { atomic.AddInt32(&calls, 1) })

	m.Shutdown()
	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestShutdownSwallowsPanickingHook(t *testing.T) {
	m := NewManager(time.Hour, func() time.Duration { return 0 })

	var ran bool
	m.OnShutdown(func() { panic("hook failure") })
	m.OnShutdown(func() { ran = true })

	require.NotPanics(t, m.Shutdown)
	assert.True(t, ran, "hooks after a panicking hook must still run")
}

func TestIdleTimerShutsDownWhenIdle(t *testing.T) {
	m := NewManager(20*time.Millisecond, func() time.Duration { return time.Hour })
	m.Start()

	select {
	case <-m.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("idle timer did not trigger shutdown")
	}
}

func TestIdleTimerReschedulesWhenActive(t *testing.T) {
	// idleFor reports recent activity, so the first firing must reschedule
	// instead of shutting down.
	var checks int32
	m := NewManager(20*time.Millisecond, func() time.Duration {
		atomic.AddInt32(&checks, 1)
		return 0
	})
	m.Start()

	time.Sleep(60 * time.Millisecond)
	select {
	case <-m.Done():
		t.Fatal("shut down despite recent activity")
	default:
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&checks), int32(1))

	m.Shutdown()
}
