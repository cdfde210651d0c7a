package domain

// Alias is the transparent wrapper used for LibraryCall In/InOut
// interface variables: it forwards reads (and, unless read-only, writes)
// to the aliased expression without itself holding any state. It is not
// a propagation source, so the listener-graph walk attaches straight
// through it to whatever the wrapped expression resolves to.
type Alias struct {
	base     exprBase
	name     string
	wrapped  Expression
	readOnly bool
}

// NewAlias wraps target under the given formal name. readOnly mirrors
// the distinction between In (read-only) and InOut (writable) interface
// variables.
func NewAlias(name string, target Expression, readOnly bool) *Alias {
	a := &Alias{name: name, wrapped: target, readOnly: readOnly}
	a.base.init(a, false)
	return a
}

func (a *Alias) Name() string { return a.name }

func (a *Alias) Subexpressions() []Expression { return []Expression{a.wrapped} }
func (a *Alias) handleActivate()               {}
func (a *Alias) handleDeactivate()             {}

func (a *Alias) ValueType() ValueType { return a.wrapped.ValueType() }
func (a *Alias) IsKnown() bool        { return a.wrapped.IsKnown() }
func (a *Alias) Value() Value         { return a.wrapped.Value() }
func (a *Alias) PrintValue() string   { return a.wrapped.PrintValue() }

// Set forwards a write to the aliased variable. Fail if this alias was
// bound read-only.
func (a *Alias) Set(val Value) {
	if a.readOnly {
		Fail("write through read-only alias %q", a.name)
	}
	writable, ok := a.wrapped.(interface{ Set(Value) })
	if !ok {
		Fail("alias %q target is not writable", a.name)
	}
	writable.Set(val)
}

func (a *Alias) Activate()                  { a.base.Activate() }
func (a *Alias) Deactivate()                { a.base.Deactivate() }
func (a *Alias) IsActive() bool             { return a.base.IsActive() }
func (a *Alias) ActivationCount() int       { return a.base.ActivationCount() }
func (a *Alias) AddListener(l Listener)     { a.base.AddListener(l) }
func (a *Alias) RemoveListener(l Listener)  { a.base.RemoveListener(l) }
func (a *Alias) IsPropagationSource() bool  { return a.base.IsPropagationSource() }
func (a *Alias) NotifyChanged()             { a.base.notify() }
