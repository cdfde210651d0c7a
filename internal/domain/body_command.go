package domain

// CommandBody describes a Command invocation: a name,
// its argument expressions, the resources it must hold for the duration
// of execution, and an optional variable to receive the command's return
// value once the external interface reports it.
type CommandBody struct {
	Name       string
	Args       []Expression
	Resources  []ResourceSpec
	ReturnInto Writable // nil if the command's return value is discarded

	// AbortAck is set true by the executive once the external interface
	// has acknowledged an abort_command call.
	AbortAck *InternalVariable
}

func NewCommandBody(name string, args []Expression, resources []ResourceSpec, returnInto Writable) *CommandBody {
	b := &CommandBody{
		Name:       name,
		Args:       args,
		Resources:  resources,
		ReturnInto: returnInto,
		AbortAck:   NewInternalVariable("", "abortAck", TypeBoolean),
	}
	b.AbortAck.SetValue(BooleanValue(false))
	return b
}

func (b *CommandBody) Kind() NodeType { return NodeTypeCommand }

func (b *CommandBody) Activate() {
	for _, a := range b.Args {
		a.Activate()
	}
	if b.ReturnInto != nil {
		b.ReturnInto.Activate()
	}
}

func (b *CommandBody) Deactivate() {
	for _, a := range b.Args {
		a.Deactivate()
	}
	if b.ReturnInto != nil {
		b.ReturnInto.Deactivate()
	}
}

// ArgumentValues evaluates the argument list in order, for handing to
// the external interface when the command is actually dispatched.
func (b *CommandBody) ArgumentValues() []Value {
	out := make([]Value, len(b.Args))
	for i, a := range b.Args {
		out[i] = a.Value()
	}
	return out
}
