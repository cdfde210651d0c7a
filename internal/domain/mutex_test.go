package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutexFIFOQueueing(t *testing.T) {
	m := NewMutex("radio")

	assert.True(t, m.TryAcquire("a"))
	assert.False(t, m.TryAcquire("b"))
	assert.False(t, m.TryAcquire("c"))

	m.Release("a")
	assert.Equal(t, "b", m.Holder(), "release must hand the mutex to the oldest waiter")

	m.Release("b")
	assert.Equal(t, "c", m.Holder())

	m.Release("c")
	assert.False(t, m.IsHeld())
}

func TestMutexReleaseReportsThePromotedWaiter(t *testing.T) {
	m := NewMutex("radio")
	require.True(t, m.TryAcquire("a"))
	require.False(t, m.TryAcquire("b"))
	require.False(t, m.TryAcquire("c"))
	assert.Equal(t, []string{"b", "c"}, m.Waiters())

	promoted, ok := m.Release("a")
	assert.True(t, ok)
	assert.Equal(t, "b", promoted, "release must report the waiter it just handed the mutex to")
	assert.Equal(t, []string{"c"}, m.Waiters())

	promoted, ok = m.Release("b")
	assert.True(t, ok)
	assert.Equal(t, "c", promoted)

	promoted, ok = m.Release("c")
	assert.False(t, ok, "releasing with no waiter left must report no promotion")
	assert.Empty(t, promoted)
}

func TestMutexReentrantAcquireIsNoOp(t *testing.T) {
	m := NewMutex("radio")
	require.True(t, m.TryAcquire("a"))
	assert.True(t, m.TryAcquire("a"), "the current holder re-requesting must succeed without queueing")
}

func TestMutexReleaseByNonHolderIsNoOp(t *testing.T) {
	m := NewMutex("radio")
	require.True(t, m.TryAcquire("a"))
	m.Release("b")
	assert.Equal(t, "a", m.Holder(), "a node that never held the mutex releasing it must not affect the current holder")
}

func TestMutexCancelWaitRemovesFromQueueOnly(t *testing.T) {
	m := NewMutex("radio")
	require.True(t, m.TryAcquire("a"))
	require.False(t, m.TryAcquire("b"))
	m.CancelWait("b")
	m.Release("a")
	assert.False(t, m.IsHeld(), "the cancelled waiter must not be handed the mutex on release")
}
