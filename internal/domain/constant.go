package domain

// Constant is a leaf expression whose value never changes and which is
// always considered active. It is not a propagation source
// since it never changes at all.
type Constant struct {
	base exprBase
	val  Value
}

// NewConstant wraps a literal Value as an Expression.
func NewConstant(v Value) *Constant {
	c := &Constant{val: v}
	c.base.init(c, false)
	return c
}

func (c *Constant) Subexpressions() []Expression { return nil }
func (c *Constant) handleActivate()               {}
func (c *Constant) handleDeactivate()             {}

func (c *Constant) ValueType() ValueType      { return c.val.Type() }
func (c *Constant) IsKnown() bool             { return c.val.IsKnown() }
func (c *Constant) Value() Value              { return c.val }
func (c *Constant) PrintValue() string        { return c.val.String() }
func (c *Constant) Activate()                  { c.base.Activate() }
func (c *Constant) Deactivate()                { c.base.Deactivate() }
func (c *Constant) IsActive() bool             { return true }
func (c *Constant) ActivationCount() int       { return c.base.ActivationCount() }
func (c *Constant) AddListener(l Listener)     { c.base.AddListener(l) }
func (c *Constant) RemoveListener(l Listener)  { c.base.RemoveListener(l) }
func (c *Constant) IsPropagationSource() bool  { return c.base.IsPropagationSource() }
func (c *Constant) NotifyChanged()             {}
