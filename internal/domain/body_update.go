package domain

// UpdateBody describes an Update node's planner-facing key/value pairs,
// sent to the external interface's "notify planner" channel with no
// return value and no resource arbitration.
type UpdateBody struct {
	Pairs map[string]Expression

	// Ack is set true by the executive once execute_update's callback
	// acknowledges.
	Ack *InternalVariable
}

func NewUpdateBody(pairs map[string]Expression) *UpdateBody {
	b := &UpdateBody{
		Pairs: pairs,
		Ack:   NewInternalVariable("", "updateAck", TypeBoolean),
	}
	b.Ack.SetValue(BooleanValue(false))
	return b
}

func (b *UpdateBody) Kind() NodeType { return NodeTypeUpdate }

func (b *UpdateBody) Activate() {
	for _, e := range b.Pairs {
		e.Activate()
	}
}

func (b *UpdateBody) Deactivate() {
	for _, e := range b.Pairs {
		e.Deactivate()
	}
}

// Values evaluates every pair for handing off to the external interface.
func (b *UpdateBody) Values() map[string]Value {
	out := make(map[string]Value, len(b.Pairs))
	for k, e := range b.Pairs {
		out[k] = e.Value()
	}
	return out
}
