package domain

// Decision is the result of evaluating a node's guarded transition table
// for its current state. Stay is true when no guard fired
// and the node remains where it is.
type Decision struct {
	Stay    bool
	Next    NodeState
	Outcome NodeOutcome // applied only if SetOutcome
	Failure FailureType // applied only if SetFailure

	SetOutcome bool
	SetFailure bool

	// The ITERATION_ENDED -> FINISHED (via AncestorEnd) transition leaves
	// SetOutcome and SetFailure false, so the outcome/failure already
	// recorded is not overwritten.
}

func stay() Decision { return Decision{Stay: true} }

func condBool(n *Node, slot ConditionSlot) (value bool, known bool) {
	v := n.Condition(slot).Value()
	b, ok := v.Bool()
	return b, ok
}

// Evaluate computes n's next-state decision, consulting only the
// conditions the current state's guard table calls active.
// It never mutates n; the executive applies the decision separately so
// that, within one scheduler step, all transition decisions are computed
// against a consistent snapshot before any of them commit.
func Evaluate(n *Node) Decision {
	switch n.State() {
	case StateInactive:
		return evalInactive(n)
	case StateWaiting:
		return evalWaiting(n)
	case StateExecuting:
		return evalExecuting(n)
	case StateFinishing:
		return evalFinishing(n)
	case StateFailing:
		return evalFailing(n)
	case StateIterationEnded:
		return evalIterationEnded(n)
	case StateFinished:
		return stay()
	default:
		return stay()
	}
}

func evalInactive(n *Node) Decision {
	p := n.Parent()
	if p == nil {
		// Root: the executive drives INACTIVE -> WAITING directly on
		// plan activation; Evaluate is never consulted for a rootless
		// INACTIVE node in practice, but this keeps the function total.
		return Decision{Next: StateWaiting}
	}
	switch p.State() {
	case StateFinished:
		return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true, Failure: FailureNone, SetFailure: true}
	case StateExecuting:
		if b, ok := condBool(n, SlotAncestorExit); ok && b {
			return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true, Failure: FailureNone, SetFailure: true}
		}
		if b, ok := condBool(n, SlotAncestorInvariant); ok && !b {
			return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true, Failure: FailureNone, SetFailure: true}
		}
		if b, ok := condBool(n, SlotAncestorEnd); ok && b {
			return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true, Failure: FailureNone, SetFailure: true}
		}
		return Decision{Next: StateWaiting}
	default:
		return stay()
	}
}

func evalWaiting(n *Node) Decision {
	if b, ok := condBool(n, SlotAncestorExit); ok && b {
		return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true}
	}
	if b, ok := condBool(n, SlotExit); ok && b {
		return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true}
	}
	if b, ok := condBool(n, SlotAncestorInvariant); ok && !b {
		return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true}
	}
	if b, ok := condBool(n, SlotAncestorEnd); ok && b {
		return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true}
	}
	if b, ok := condBool(n, SlotSkip); ok && b {
		return Decision{Next: StateFinished, Outcome: OutcomeSkipped, SetOutcome: true}
	}
	if b, ok := condBool(n, SlotStart); !ok || !b {
		return stay()
	}
	if b, ok := condBool(n, SlotPre); !ok || !b {
		return Decision{
			Next: StateIterationEnded, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailurePreConditionFailed, SetFailure: true,
		}
	}
	return Decision{Next: StateExecuting}
}

func evalExecuting(n *Node) Decision {
	hasChildren := n.Type().HasChildren()
	failLegal := n.Type() != NodeTypeEmpty

	if b, ok := condBool(n, SlotAncestorExit); ok && b {
		if !failLegal {
			return Decision{Next: StateFinished, Outcome: OutcomeInterrupted, SetOutcome: true,
				Failure: FailureParentExited, SetFailure: true}
		}
		return Decision{Next: StateFailing, Outcome: OutcomeInterrupted, SetOutcome: true,
			Failure: FailureParentExited, SetFailure: true}
	}
	if b, ok := condBool(n, SlotExit); ok && b {
		if !failLegal {
			return Decision{Next: StateIterationEnded, Outcome: OutcomeInterrupted, SetOutcome: true,
				Failure: FailureExited, SetFailure: true}
		}
		return Decision{Next: StateFailing, Outcome: OutcomeInterrupted, SetOutcome: true,
			Failure: FailureExited, SetFailure: true}
	}
	if b, ok := condBool(n, SlotAncestorInvariant); ok && !b {
		if !failLegal {
			return Decision{Next: StateFinished, Outcome: OutcomeFailure, SetOutcome: true,
				Failure: FailureParentFailed, SetFailure: true}
		}
		return Decision{Next: StateFailing, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailureParentFailed, SetFailure: true}
	}
	if b, ok := condBool(n, SlotInvariant); ok && !b {
		if !failLegal {
			return Decision{Next: StateIterationEnded, Outcome: OutcomeFailure, SetOutcome: true,
				Failure: FailureInvariantConditionFailed, SetFailure: true}
		}
		return Decision{Next: StateFailing, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailureInvariantConditionFailed, SetFailure: true}
	}

	end, known := condBool(n, SlotEnd)
	if !known || !end {
		return stay()
	}
	if hasChildren {
		return Decision{Next: StateFinishing}
	}
	if n.HasAssignmentConflict() {
		return Decision{Next: StateIterationEnded, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailureAssignmentConflict, SetFailure: true}
	}
	post, postKnown := condBool(n, SlotPost)
	if postKnown && post {
		return Decision{Next: StateIterationEnded, Outcome: OutcomeSuccess, SetOutcome: true,
			Failure: FailureNone, SetFailure: true}
	}
	return Decision{Next: StateIterationEnded, Outcome: OutcomeFailure, SetOutcome: true,
		Failure: FailurePostConditionFailed, SetFailure: true}
}

func evalFinishing(n *Node) Decision {
	if b, ok := condBool(n, SlotAncestorExit); ok && b {
		return Decision{Next: StateFailing, Outcome: OutcomeInterrupted, SetOutcome: true,
			Failure: FailureParentExited, SetFailure: true}
	}
	if b, ok := condBool(n, SlotExit); ok && b {
		return Decision{Next: StateFailing, Outcome: OutcomeInterrupted, SetOutcome: true,
			Failure: FailureExited, SetFailure: true}
	}
	if b, ok := condBool(n, SlotAncestorInvariant); ok && !b {
		return Decision{Next: StateFailing, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailureParentFailed, SetFailure: true}
	}
	if b, ok := condBool(n, SlotInvariant); ok && !b {
		return Decision{Next: StateFailing, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailureInvariantConditionFailed, SetFailure: true}
	}
	if b, ok := condBool(n, SlotActionComplete); ok && b {
		post, postKnown := condBool(n, SlotPost)
		if postKnown && post {
			return Decision{Next: StateIterationEnded, Outcome: OutcomeSuccess, SetOutcome: true,
				Failure: FailureNone, SetFailure: true}
		}
		return Decision{Next: StateIterationEnded, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailurePostConditionFailed, SetFailure: true}
	}
	return stay()
}

func evalFailing(n *Node) Decision {
	actionComplete, ok := condBool(n, SlotActionComplete)
	if !ok || !actionComplete {
		return stay()
	}
	if n.Type() == NodeTypeCommand {
		abortComplete, ok := condBool(n, SlotAbortComplete)
		if !ok || !abortComplete {
			return stay()
		}
	}
	switch n.FailureType() {
	case FailureParentExited, FailureParentFailed:
		return Decision{Next: StateFinished}
	default:
		return Decision{Next: StateIterationEnded}
	}
}

func evalIterationEnded(n *Node) Decision {
	if b, ok := condBool(n, SlotAncestorExit); ok && b {
		return Decision{Next: StateFinished, Outcome: OutcomeInterrupted, SetOutcome: true,
			Failure: FailureParentExited, SetFailure: true}
	}
	if b, ok := condBool(n, SlotAncestorInvariant); ok && !b {
		return Decision{Next: StateFinished, Outcome: OutcomeFailure, SetOutcome: true,
			Failure: FailureParentFailed, SetFailure: true}
	}
	if b, ok := condBool(n, SlotAncestorEnd); ok && b {
		return Decision{Next: StateFinished} // outcome/failure preserved
	}
	repeat, known := condBool(n, SlotRepeat)
	if !known {
		return stay()
	}
	if repeat {
		return Decision{Next: StateWaiting, Outcome: OutcomeNone, SetOutcome: true,
			Failure: FailureNone, SetFailure: true}
	}
	return Decision{Next: StateFinished}
}

// Apply commits decision onto n at logical step tick, per the executive's
// dedicated commit sub-phase: state changes first, then
// outcome/failure, so anything reading n mid-commit never observes a
// half-applied transition within the same field group.
func (d Decision) Apply(n *Node, tick int64) {
	if d.Stay {
		return
	}
	n.SetState(d.Next, tick)
	if d.SetOutcome {
		n.SetOutcome(d.Outcome)
	}
	if d.SetFailure {
		n.SetFailureType(d.Failure)
	}
}

// ResetForIteration returns a FINISHED node (whose parent is repeating)
// to INACTIVE: deactivates it (restoring locals to their initializers on
// the next activation), clears outcome and
// failure, and stamps the INACTIVE timepoint.
func (n *Node) ResetForIteration(tick int64) {
	n.Deactivate()
	n.SetOutcome(OutcomeNone)
	n.SetFailureType(FailureNone)
	n.assignmentConflict = false
	n.SetState(StateInactive, tick)
}
