package domain

// InternalVariable exposes one read-only facet of a node's own bookkeeping
// -- its state, outcome, failure type, command handle, or a timepoint --
// as an Expression so it can be referenced from conditions.
//
// The reference PLEXIL engine installs the listener on the owning node
// rather than on the expression itself, to avoid allocating a Variable
// object per node per facet. This rewrite keeps the owning Node's arena
// slot (domain.NodeTable) as the single source of truth and has the node
// push every transition straight into the corresponding InternalVariable
// via SetValue, which is equivalent from the listener graph's point of
// view and avoids the extra indirection.
type InternalVariable struct {
	base    exprBase
	nodeID  string
	facet   string
	typ     ValueType
	current Value
}

// NewInternalVariable builds an internal variable for diagnostic facet
// (e.g. "state", "outcome", "EXECUTING.START") of the node identified by
// nodeID. It always starts unknown; the owning Node sets the first value
// once its lifecycle reaches the relevant point.
func NewInternalVariable(nodeID, facet string, typ ValueType) *InternalVariable {
	iv := &InternalVariable{nodeID: nodeID, facet: facet, typ: typ, current: Unknown(typ)}
	iv.base.init(iv, true)
	return iv
}

func (iv *InternalVariable) Subexpressions() []Expression { return nil }
func (iv *InternalVariable) handleActivate()               {}
func (iv *InternalVariable) handleDeactivate()             {}

// SetValue is called by the owning node whenever this facet changes
// (entering a new state, recording an outcome, stamping a timepoint). The
// value always mirrors the node's live bookkeeping regardless of this
// expression's own activation count; only the notify is conditioned on
// an actual change.
func (iv *InternalVariable) SetValue(v Value) {
	changed := !iv.current.Equal(v) || iv.current.IsKnown() != v.IsKnown()
	iv.current = v
	if changed {
		iv.base.notify()
	}
}

func (iv *InternalVariable) ValueType() ValueType { return iv.typ }
func (iv *InternalVariable) IsKnown() bool        { return iv.current.IsKnown() }
func (iv *InternalVariable) Value() Value         { return iv.current }
func (iv *InternalVariable) PrintValue() string   { return iv.current.String() }

func (iv *InternalVariable) Activate()                  { iv.base.Activate() }
func (iv *InternalVariable) Deactivate()                { iv.base.Deactivate() }
func (iv *InternalVariable) IsActive() bool             { return iv.base.IsActive() }
func (iv *InternalVariable) ActivationCount() int       { return iv.base.ActivationCount() }
func (iv *InternalVariable) AddListener(l Listener)     { iv.base.AddListener(l) }
func (iv *InternalVariable) RemoveListener(l Listener)  { iv.base.RemoveListener(l) }
func (iv *InternalVariable) IsPropagationSource() bool  { return iv.base.IsPropagationSource() }
func (iv *InternalVariable) NotifyChanged()             {}
