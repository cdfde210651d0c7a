package domain

// Variable is the mutable leaf expression: plan parameters, node-declared
// locals, and library-call formals are all Variables, optionally given
// an initializer expression that is (re-)read every time the variable is
// activated. Variables are propagation sources: their value changes on
// direct Set calls, not only because a subexpression changed.
type Variable struct {
	base        exprBase
	name        string
	typ         ValueType
	current     Value
	initializer Expression
}

// NewVariable builds a Variable with no initializer; its value starts
// unknown on every activation.
func NewVariable(name string, typ ValueType) *Variable {
	v := &Variable{name: name, typ: typ, current: Unknown(typ)}
	v.base.init(v, true)
	return v
}

// NewVariableWithInitializer builds a Variable whose value is read from
// init every time the variable activates.
func NewVariableWithInitializer(name string, typ ValueType, init Expression) *Variable {
	v := &Variable{name: name, typ: typ, current: Unknown(typ), initializer: init}
	v.base.init(v, true)
	return v
}

// Name returns the variable's declared name (used by scope lookups and
// diagnostics, not part of the Expression contract).
func (v *Variable) Name() string { return v.name }

// Subexpressions deliberately returns nil: the initializer is a
// lifecycle dependency (read once per activation), not part of the
// change-notification graph -- listeners attach directly to the Variable
// itself, since it is the propagation source.
func (v *Variable) Subexpressions() []Expression { return nil }

func (v *Variable) handleActivate() {
	if v.initializer != nil {
		v.initializer.Activate()
		v.current = v.initializer.Value()
	} else {
		v.current = Unknown(v.typ)
	}
}

func (v *Variable) handleDeactivate() {
	if v.initializer != nil {
		v.initializer.Deactivate()
	}
	v.current = Unknown(v.typ)
}

// Set assigns a new value, only legal while the variable is
// active. A write that does not change the (known-ness, payload) of the
// value is not a change and does not notify listeners.
func (v *Variable) Set(val Value) {
	if !v.base.IsActive() {
		Fail("write to inactive variable %q", v.name)
	}
	if val.Type() != v.typ && !(val.Type().IsNumeric() && v.typ.IsNumeric()) {
		Fail("type mismatch assigning to variable %q: %s into %s", v.name, val.Type(), v.typ)
	}
	changed := !v.current.Equal(val) || v.current.IsKnown() != val.IsKnown()
	v.current = val
	if changed {
		v.base.notify()
	}
}

// SetUnknown resets the variable to the unknown value, used by command/
// assignment failure handling and Update body resets.
func (v *Variable) SetUnknown() {
	v.Set(Unknown(v.typ))
}

func (v *Variable) ValueType() ValueType { return v.typ }
func (v *Variable) IsKnown() bool        { return v.base.IsActive() && v.current.IsKnown() }
func (v *Variable) Value() Value {
	if !v.base.IsActive() {
		return Unknown(v.typ)
	}
	return v.current
}
func (v *Variable) PrintValue() string       { return v.Value().String() }
func (v *Variable) Activate()                { v.base.Activate() }
func (v *Variable) Deactivate()               { v.base.Deactivate() }
func (v *Variable) IsActive() bool           { return v.base.IsActive() }
func (v *Variable) ActivationCount() int     { return v.base.ActivationCount() }
func (v *Variable) AddListener(l Listener)    { v.base.AddListener(l) }
func (v *Variable) RemoveListener(l Listener) { v.base.RemoveListener(l) }
func (v *Variable) IsPropagationSource() bool { return v.base.IsPropagationSource() }
func (v *Variable) NotifyChanged()            {}
