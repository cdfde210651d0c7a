package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(typ NodeType) *Node {
	table := NewNodeTable()
	return NewNode("n", typ, nil, table)
}

func setBool(n *Node, slot ConditionSlot, known, val bool) {
	if !known {
		n.setSynthesizedCondition(slot, NewConstant(Unknown(TypeBoolean)))
		return
	}
	n.setSynthesizedCondition(slot, NewConstant(BooleanValue(val)))
}

// TestWaitingGuardPriority exercises evalWaiting's guard order: an
// AncestorExit/Exit/AncestorInvariant/AncestorEnd/Skip hit always wins over
// Start, and Start must be known-true before Pre is even consulted.
func TestWaitingGuardPriority(t *testing.T) {
	cases := []struct {
		name       string
		setup      func(n *Node)
		wantStay   bool
		wantNext   NodeState
		wantOut    NodeOutcome
	}{
		{
			name: "ancestor exit wins over everything",
			setup: func(n *Node) {
				setBool(n, SlotAncestorExit, true, true)
				setBool(n, SlotStart, true, true)
			},
			wantNext: StateFinished, wantOut: OutcomeSkipped,
		},
		{
			name: "start unknown stays waiting",
			setup: func(n *Node) {
				setBool(n, SlotStart, false, false)
			},
			wantStay: true,
		},
		{
			name: "start false stays waiting",
			setup: func(n *Node) {
				setBool(n, SlotStart, true, false)
			},
			wantStay: true,
		},
		{
			name: "start true, pre false fails precondition",
			setup: func(n *Node) {
				setBool(n, SlotStart, true, true)
				setBool(n, SlotPre, true, false)
			},
			wantNext: StateIterationEnded, wantOut: OutcomeFailure,
		},
		{
			name: "start true, pre true executes",
			setup: func(n *Node) {
				setBool(n, SlotStart, true, true)
				setBool(n, SlotPre, true, true)
			},
			wantNext: StateExecuting,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := newTestNode(NodeTypeEmpty)
			n.SetState(StateWaiting, 0)
			c.setup(n)
			d := evalWaiting(n)
			if c.wantStay {
				assert.True(t, d.Stay)
				return
			}
			require.False(t, d.Stay)
			assert.Equal(t, c.wantNext, d.Next)
			if d.SetOutcome {
				assert.Equal(t, c.wantOut, d.Outcome)
			}
		})
	}
}

// TestExecutingFailLegality checks that a node type which cannot legally
// enter FAILING (NodeTypeEmpty) short-circuits straight to a terminal
// state instead, while a type that can (NodeTypeCommand) goes through
// FAILING first.
func TestExecutingFailLegality(t *testing.T) {
	empty := newTestNode(NodeTypeEmpty)
	empty.SetState(StateExecuting, 0)
	setBool(empty, SlotExit, true, true)
	d := evalExecuting(empty)
	assert.Equal(t, StateIterationEnded, d.Next, "Empty nodes may not enter FAILING")
	assert.Equal(t, FailureExited, d.Failure)

	cmd := newTestNode(NodeTypeCommand)
	cmd.SetState(StateExecuting, 0)
	setBool(cmd, SlotExit, true, true)
	d = evalExecuting(cmd)
	assert.Equal(t, StateFailing, d.Next, "Command nodes must drain through FAILING")
	assert.Equal(t, FailureExited, d.Failure)
}

func TestExecutingEndConditionGatesCompletion(t *testing.T) {
	n := newTestNode(NodeTypeCommand)
	n.SetState(StateExecuting, 0)
	setBool(n, SlotEnd, false, false)
	d := evalExecuting(n)
	assert.True(t, d.Stay, "an unknown End condition must never let the node complete")

	setBool(n, SlotEnd, true, true)
	setBool(n, SlotPost, true, true)
	d = evalExecuting(n)
	assert.Equal(t, StateIterationEnded, d.Next)
	assert.Equal(t, OutcomeSuccess, d.Outcome)

	setBool(n, SlotPost, true, false)
	d = evalExecuting(n)
	assert.Equal(t, OutcomeFailure, d.Outcome)
	assert.Equal(t, FailurePostConditionFailed, d.Failure)
}

func TestExecutingWithChildrenGoesToFinishing(t *testing.T) {
	n := newTestNode(NodeTypeList)
	n.SetState(StateExecuting, 0)
	setBool(n, SlotEnd, true, true)
	d := evalExecuting(n)
	assert.Equal(t, StateFinishing, d.Next, "a container node must drain its children via FINISHING, not complete directly")
}

func TestFailingWaitsForActionAndAbortComplete(t *testing.T) {
	n := newTestNode(NodeTypeCommand)
	n.SetState(StateFailing, 0)
	n.SetFailureType(FailureExited)
	setBool(n, SlotActionComplete, true, true)
	setBool(n, SlotAbortComplete, true, false)

	d := evalFailing(n)
	assert.True(t, d.Stay, "Command nodes must also wait for AbortComplete before leaving FAILING")

	setBool(n, SlotAbortComplete, true, true)
	d = evalFailing(n)
	assert.Equal(t, StateIterationEnded, d.Next)
}

func TestFailingParentExitedGoesStraightToFinished(t *testing.T) {
	n := newTestNode(NodeTypeCommand)
	n.SetState(StateFailing, 0)
	n.SetFailureType(FailureParentExited)
	setBool(n, SlotActionComplete, true, true)
	setBool(n, SlotAbortComplete, true, true)

	d := evalFailing(n)
	assert.Equal(t, StateFinished, d.Next, "a parent-exit-driven failure skips ITERATION_ENDED entirely")
}

func TestIterationEndedRepeatLoopsBackToWaiting(t *testing.T) {
	n := newTestNode(NodeTypeEmpty)
	n.SetState(StateIterationEnded, 0)
	setBool(n, SlotRepeat, true, true)

	d := evalIterationEnded(n)
	assert.Equal(t, StateWaiting, d.Next)
	assert.Equal(t, OutcomeNone, d.Outcome)
}

func TestIterationEndedAncestorEndPreservesOutcome(t *testing.T) {
	n := newTestNode(NodeTypeEmpty)
	n.SetState(StateIterationEnded, 0)
	n.SetOutcome(OutcomeSuccess)
	setBool(n, SlotAncestorEnd, true, true)

	d := evalIterationEnded(n)
	assert.Equal(t, StateFinished, d.Next)
	assert.False(t, d.SetOutcome, "AncestorEnd-driven completion must not overwrite the already-recorded outcome")
}

func TestApplyCommitsStateThenOutcomeThenFailure(t *testing.T) {
	n := newTestNode(NodeTypeEmpty)
	n.SetState(StateWaiting, 0)
	d := Decision{Next: StateIterationEnded, Outcome: OutcomeFailure, SetOutcome: true, Failure: FailurePreConditionFailed, SetFailure: true}
	d.Apply(n, 1)

	assert.Equal(t, StateIterationEnded, n.State())
	assert.Equal(t, OutcomeFailure, n.Outcome())
	assert.Equal(t, FailurePreConditionFailed, n.FailureType())
}
