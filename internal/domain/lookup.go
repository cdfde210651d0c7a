package domain

// Lookup is the propagation-source leaf that exposes a named piece of
// external world-state as an Expression. The domain layer only models
// its data and activation lifecycle; the actual subscribe/unsubscribe
// call against the external interface is wired in by the executive
// through OnActivate/OnDeactivate, keeping this package free of any
// dependency on the application layer.
type Lookup struct {
	base    exprBase
	name    string
	args    []Expression
	typ     ValueType
	current Value

	OnActivate   func(l *Lookup)
	OnDeactivate func(l *Lookup)
}

// NewLookup builds a Lookup for name with the given (already-typed)
// parameter expressions and result type. It starts unknown until the
// external interface's first lookup_update callback arrives.
func NewLookup(name string, args []Expression, typ ValueType) *Lookup {
	l := &Lookup{name: name, args: args, typ: typ, current: Unknown(typ)}
	l.base.init(l, true)
	return l
}

func (l *Lookup) Name() string       { return l.name }
func (l *Lookup) Args() []Expression { return l.args }

func (l *Lookup) Subexpressions() []Expression { return nil }

func (l *Lookup) handleActivate() {
	for _, a := range l.args {
		a.Activate()
	}
	if l.OnActivate != nil {
		l.OnActivate(l)
	}
}

func (l *Lookup) handleDeactivate() {
	if l.OnDeactivate != nil {
		l.OnDeactivate(l)
	}
	for _, a := range l.args {
		a.Deactivate()
	}
	l.current = Unknown(l.typ)
}

// SetValue is the external interface's lookup_update callback landing on
// this expression.
func (l *Lookup) SetValue(v Value) {
	changed := !l.current.Equal(v) || l.current.IsKnown() != v.IsKnown()
	l.current = v
	if changed {
		l.base.notify()
	}
}

func (l *Lookup) ValueType() ValueType { return l.typ }
func (l *Lookup) IsKnown() bool        { return l.current.IsKnown() }
func (l *Lookup) Value() Value         { return l.current }
func (l *Lookup) PrintValue() string   { return l.current.String() }

func (l *Lookup) Activate()                  { l.base.Activate() }
func (l *Lookup) Deactivate()                { l.base.Deactivate() }
func (l *Lookup) IsActive() bool             { return l.base.IsActive() }
func (l *Lookup) ActivationCount() int       { return l.base.ActivationCount() }
func (l *Lookup) AddListener(ls Listener)    { l.base.AddListener(ls) }
func (l *Lookup) RemoveListener(ls Listener) { l.base.RemoveListener(ls) }
func (l *Lookup) IsPropagationSource() bool  { return l.base.IsPropagationSource() }
func (l *Lookup) NotifyChanged()             {}
