package domain

// AssignmentBody computes RHS once per execution and writes it into
// Target. Two assignments to the same variable landing in the same
// macro step are resolved by node priority in the executive's
// flushAssignments, not here: every node's Ack still fires, but a losing
// node's write is discarded and it is driven to FailureAssignmentConflict
// instead of Success.
type AssignmentBody struct {
	Target Writable
	RHS    Expression

	// Ack is set true by the executive once the apply sub-phase has
	// actually written Target.
	Ack *InternalVariable
}

func NewAssignmentBody(target Writable, rhs Expression) *AssignmentBody {
	b := &AssignmentBody{
		Target: target,
		RHS:    rhs,
		Ack:    NewInternalVariable("", "assignmentAck", TypeBoolean),
	}
	b.Ack.SetValue(BooleanValue(false))
	return b
}

// Reset clears the ack signal back to false, done by the executive each
// time the owning node re-enters EXECUTING on a loop iteration.
func (b *AssignmentBody) Reset() {
	b.Ack.SetValue(BooleanValue(false))
}

func (b *AssignmentBody) Kind() NodeType { return NodeTypeAssignment }

func (b *AssignmentBody) Activate() {
	b.RHS.Activate()
}

func (b *AssignmentBody) Deactivate() {
	b.RHS.Deactivate()
}
