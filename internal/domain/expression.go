package domain

// Listener is anything that wants to hear about a value change: another
// expression's interior node, or a node's condition scheduler.
type Listener interface {
	NotifyChanged()
}

// ListenerFunc adapts a plain function to Listener for one-shot
// subscriptions (tests, ad-hoc probes). Two distinct ListenerFunc values
// are never == to each other even if they wrap the same underlying
// function, so RemoveListener cannot find and remove one by value;
// callers needing removable listeners should use a named type with
// pointer identity instead.
type ListenerFunc func()

func (f ListenerFunc) NotifyChanged() { f() }

// Expression is the abstract DAG node shared by every plan-level value:
// constants, variables, aliases, and operator applications all satisfy it.
type Expression interface {
	ValueType() ValueType
	IsKnown() bool
	Value() Value
	PrintValue() string

	Activate()
	Deactivate()
	IsActive() bool
	ActivationCount() int

	AddListener(l Listener)
	RemoveListener(l Listener)

	// IsPropagationSource reports whether this expression may change value
	// independently of its subexpressions.
	IsPropagationSource() bool
}

// hooks lets exprBase simulate virtual dispatch onto the concrete
// expression embedding it (Go has no subclassing, so each concrete type
// registers itself once at construction time via exprBase.init).
type hooks interface {
	Subexpressions() []Expression
	handleActivate()
	handleDeactivate()
}

// exprBase implements the activation-counting and listener-graph-
// minimization machinery common to every Expression. It is
// embedded by every concrete expression type, which supplies `hooks` via
// init so exprBase can walk the subexpression tree without needing Go
// interface embedding tricks.
type exprBase struct {
	self      hooks
	active    int
	listeners []Listener
	source    bool
}

func (b *exprBase) init(self hooks, isPropagationSource bool) {
	b.self = self
	b.source = isPropagationSource
}

func (b *exprBase) IsPropagationSource() bool { return b.source }

func (b *exprBase) IsActive() bool         { return b.active > 0 }
func (b *exprBase) ActivationCount() int   { return b.active }

// Activate implements activation-counting: increments the counter and, on
// 0→1, activates every subexpression and calls handleActivate.
func (b *exprBase) Activate() {
	b.active++
	if b.active == 1 {
		for _, sub := range b.self.Subexpressions() {
			if sub != nil {
				sub.Activate()
			}
		}
		b.self.handleActivate()
	}
}

// Deactivate implements the mirror of Activate. Underflow is a fatal
// internal error.
func (b *exprBase) Deactivate() {
	if b.active == 0 {
		Fail("activation count underflow")
	}
	b.active--
	if b.active == 0 {
		b.self.handleDeactivate()
		for _, sub := range b.self.Subexpressions() {
			if sub != nil {
				sub.Deactivate()
			}
		}
	}
}

// AddListener attaches l to this expression. Attaching the first
// listener to an interior expression walks its subexpressions, installing
// itself on every propagation-source subexpression and recursing through
// the rest, so interior hops never carry their own listener registration.
func (b *exprBase) AddListener(l Listener) {
	if len(b.listeners) == 0 {
		b.attachDownstream()
	}
	b.listeners = append(b.listeners, l)
}

// RemoveListener implements the reverse walk of AddListener.
func (b *exprBase) RemoveListener(l Listener) {
	for i, have := range b.listeners {
		if have == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			break
		}
	}
	if len(b.listeners) == 0 {
		b.detachDownstream()
	}
}

func (b *exprBase) attachDownstream() {
	attachDownstream(b.self.(Listener), b.self.Subexpressions())
}

func (b *exprBase) detachDownstream() {
	detachDownstream(b.self.(Listener), b.self.Subexpressions())
}

// attachDownstream and detachDownstream are free functions (rather than
// exprBase methods) so leaf expressions with no subexpressions of their
// own can still be recursed into uniformly.
func attachDownstream(self Listener, subs []Expression) {
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		if sub.IsPropagationSource() {
			sub.AddListener(self)
			continue
		}
		if nested, ok := sub.(interface{ Subexpressions() []Expression }); ok {
			attachDownstream(self, nested.Subexpressions())
		}
	}
}

func detachDownstream(self Listener, subs []Expression) {
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		if sub.IsPropagationSource() {
			sub.RemoveListener(self)
			continue
		}
		if nested, ok := sub.(interface{ Subexpressions() []Expression }); ok {
			detachDownstream(self, nested.Subexpressions())
		}
	}
}

// notify publishes to a snapshot of the current listeners. Copying the
// slice before iterating means a listener callback that adds or removes
// listeners on this same expression can't corrupt the in-flight loop.
func (b *exprBase) notify() {
	if len(b.listeners) == 0 {
		return
	}
	snapshot := make([]Listener, len(b.listeners))
	copy(snapshot, b.listeners)
	for _, l := range snapshot {
		l.NotifyChanged()
	}
}
