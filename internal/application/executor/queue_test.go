package executor

import (
	"testing"

	"github.com/plexilrun/plexil/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueMergeCombinesCheckWithInFlightWork(t *testing.T) {
	cases := []struct {
		name string
		cur  domain.QueueStatus
		add  domain.QueueStatus
		want domain.QueueStatus
	}{
		{"none + check", domain.QueueNone, domain.QueueCheck, domain.QueueCheck},
		{"transition + check merges", domain.QueueTransition, domain.QueueCheck, domain.QueueTransitionCheck},
		{"pending + check merges", domain.QueuePending, domain.QueueCheck, domain.QueuePendingCheck},
		{"pendingTry + check merges", domain.QueuePendingTry, domain.QueueCheck, domain.QueuePendingTryCheck},
		{"check + transition upgrades", domain.QueueCheck, domain.QueueTransition, domain.QueueTransition},
		{"transition + transition is idempotent", domain.QueueTransition, domain.QueueTransition, domain.QueueTransition},
		{"pendingCheck + pendingTry merges", domain.QueuePendingCheck, domain.QueuePendingTry, domain.QueuePendingTryCheck},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, merge(c.cur, c.add))
		})
	}
}

func TestQueueBarePendingIsNotActionable(t *testing.T) {
	table := domain.NewNodeTable()
	q := NewQueue(table)
	q.MarkPending("a")
	assert.False(t, q.Pending(), "bare PENDING must never be actionable, or the arbiter would spin retrying unchanged state")

	q.MarkPendingTry("a")
	assert.True(t, q.Pending(), "PENDING_TRY (release notification or backoff rescan) must be actionable")
}

func TestQueueDrainOrdersByPriorityThenID(t *testing.T) {
	table := domain.NewNodeTable()
	low := domain.NewNode("low-priority", domain.NodeTypeEmpty, nil, table)
	low.SetPriority(10)
	high := domain.NewNode("high-priority", domain.NodeTypeEmpty, nil, table)
	high.SetPriority(1)
	tie := domain.NewNode("aaa-tie", domain.NodeTypeEmpty, nil, table)
	tie.SetPriority(10)

	q := NewQueue(table)
	q.MarkTransition(low.ID())
	q.MarkTransition(high.ID())
	q.MarkTransition(tie.ID())

	order := q.Drain()
	require.Len(t, order, 3)
	assert.Equal(t, "high-priority", order[0])
	assert.Equal(t, "aaa-tie", order[1], "equal priority breaks the tie by node id")
	assert.Equal(t, "low-priority", order[2])
}

func TestQueueResolveDemotesCombinedStatusToCheck(t *testing.T) {
	table := domain.NewNodeTable()
	q := NewQueue(table)
	q.MarkTransition("n")
	q.MarkCheck("n")
	require.Equal(t, domain.QueueTransitionCheck, q.Status("n"))

	q.Resolve("n")
	assert.Equal(t, domain.QueueCheck, q.Status("n"), "resolving a combined status must leave the CHECK half outstanding")

	q.Resolve("n")
	assert.Equal(t, domain.QueueNone, q.Status("n"))
}
