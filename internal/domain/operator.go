package domain

// Operator is a pure function over an operand list, applied by an
// OperatorApplication. Built-ins are package-level values so plan
// builders can reference them by name.
type Operator interface {
	Name() string
	// ResultType reports the static type the operator produces given its
	// (already-typed) operands; used by plan Check before any value ever
	// flows.
	ResultType(args []Expression) ValueType
	// Eval computes the value. It must honor tri-state short-circuiting
	// where called for (e.g. AND is false if any operand is known-false,
	// regardless of other operands being unknown).
	Eval(args []Expression) Value
}

// funcOperator adapts plain functions to Operator, the idiomatic
// functional-table style this codebase favors for small pluggable
// behaviors (see the executive's per-node-type transition tables).
type funcOperator struct {
	name       string
	resultType func(args []Expression) ValueType
	eval       func(args []Expression) Value
}

func (f *funcOperator) Name() string                           { return f.name }
func (f *funcOperator) ResultType(args []Expression) ValueType { return f.resultType(args) }
func (f *funcOperator) Eval(args []Expression) Value           { return f.eval(args) }

func fixedType(t ValueType) func([]Expression) ValueType {
	return func([]Expression) ValueType { return t }
}

// OperatorApplication is the interior expression node applying an
// Operator to a fixed operand list. It is pull-based: Value
// recomputes from the current operand values on every call, and caches
// the last result only to decide whether a change-notification fires.
type OperatorApplication struct {
	base      exprBase
	op        Operator
	args      []Expression
	lastValue Value
	lastSet   bool
}

// NewOperatorApplication builds an interior expression applying op to
// args, in left-to-right operand order.
func NewOperatorApplication(op Operator, args ...Expression) *OperatorApplication {
	o := &OperatorApplication{op: op, args: args}
	o.base.init(o, false)
	return o
}

func (o *OperatorApplication) Subexpressions() []Expression { return o.args }
func (o *OperatorApplication) handleActivate()               {}
func (o *OperatorApplication) handleDeactivate()             { o.lastSet = false }

func (o *OperatorApplication) ValueType() ValueType { return o.op.ResultType(o.args) }
func (o *OperatorApplication) IsKnown() bool        { return o.Value().IsKnown() }
func (o *OperatorApplication) Value() Value         { return o.op.Eval(o.args) }
func (o *OperatorApplication) PrintValue() string   { return o.Value().String() }

func (o *OperatorApplication) Activate()                  { o.base.Activate() }
func (o *OperatorApplication) Deactivate()                { o.base.Deactivate() }
func (o *OperatorApplication) IsActive() bool             { return o.base.IsActive() }
func (o *OperatorApplication) ActivationCount() int       { return o.base.ActivationCount() }
func (o *OperatorApplication) AddListener(l Listener)     { o.base.AddListener(l) }
func (o *OperatorApplication) RemoveListener(l Listener)  { o.base.RemoveListener(l) }
func (o *OperatorApplication) IsPropagationSource() bool  { return o.base.IsPropagationSource() }

// NotifyChanged is called when one of o's operands (or something further
// downstream) changes. It re-evaluates and forwards a notification to
// o's own listeners only if the recomputed value actually differs.
func (o *OperatorApplication) NotifyChanged() {
	v := o.Value()
	if o.lastSet && o.lastValue.Equal(v) && o.lastValue.IsKnown() == v.IsKnown() {
		return
	}
	o.lastValue = v
	o.lastSet = true
	o.base.notify()
}

// ---- boolean operators (tri-state) ----

var OpNot = &funcOperator{
	name:       "NOT",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		b, ok := args[0].Value().Bool()
		if !ok {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(!b)
	},
}

var OpAnd = &funcOperator{
	name:       "AND",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		sawUnknown := false
		for _, a := range args {
			b, ok := a.Value().Bool()
			if !ok {
				sawUnknown = true
				continue
			}
			if !b {
				return BooleanValue(false)
			}
		}
		if sawUnknown {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(true)
	},
}

var OpOr = &funcOperator{
	name:       "OR",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		sawUnknown := false
		for _, a := range args {
			b, ok := a.Value().Bool()
			if !ok {
				sawUnknown = true
				continue
			}
			if b {
				return BooleanValue(true)
			}
		}
		if sawUnknown {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(false)
	},
}

var OpXor = &funcOperator{
	name:       "XOR",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		acc := false
		for _, a := range args {
			b, ok := a.Value().Bool()
			if !ok {
				return Unknown(TypeBoolean)
			}
			if b {
				acc = !acc
			}
		}
		return BooleanValue(acc)
	},
}

var OpIsKnown = &funcOperator{
	name:       "IsKnown",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		return BooleanValue(args[0].Value().IsKnown())
	},
}

// ---- numeric comparisons ----

func numericCompare(name string, cmp func(a, b float64) bool) *funcOperator {
	return &funcOperator{
		name:       name,
		resultType: fixedType(TypeBoolean),
		eval: func(args []Expression) Value {
			a, ok1 := args[0].Value().Real()
			b, ok2 := args[1].Value().Real()
			if !ok1 || !ok2 {
				return Unknown(TypeBoolean)
			}
			return BooleanValue(cmp(a, b))
		},
	}
}

var (
	OpLT = numericCompare("LT", func(a, b float64) bool { return a < b })
	OpLE = numericCompare("LE", func(a, b float64) bool { return a <= b })
	OpGT = numericCompare("GT", func(a, b float64) bool { return a > b })
	OpGE = numericCompare("GE", func(a, b float64) bool { return a >= b })
)

var OpEQ = &funcOperator{
	name:       "EQ",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		a, b := args[0].Value(), args[1].Value()
		if !a.IsKnown() || !b.IsKnown() {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(a.Equal(b))
	},
}

var OpNEQ = &funcOperator{
	name:       "NEQ",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		a, b := args[0].Value(), args[1].Value()
		if !a.IsKnown() || !b.IsKnown() {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(!a.Equal(b))
	},
}

// ---- arithmetic ----

func resultNumericType(args []Expression) ValueType {
	for _, a := range args {
		if a.ValueType() == TypeReal {
			return TypeReal
		}
	}
	return TypeInteger
}

func arith(name string, fn func(a, b float64) float64) *funcOperator {
	return &funcOperator{
		name:       name,
		resultType: resultNumericType,
		eval: func(args []Expression) Value {
			typ := resultNumericType(args)
			acc, ok := args[0].Value().Real()
			if !ok {
				return Unknown(typ)
			}
			for _, a := range args[1:] {
				v, ok := a.Value().Real()
				if !ok {
					return Unknown(typ)
				}
				acc = fn(acc, v)
			}
			if typ == TypeInteger {
				return IntegerValue(int64(acc))
			}
			return RealValue(acc)
		},
	}
}

var (
	OpAdd = arith("ADD", func(a, b float64) float64 { return a + b })
	OpSub = arith("SUB", func(a, b float64) float64 { return a - b })
	OpMul = arith("MUL", func(a, b float64) float64 { return a * b })
)

var OpDiv = &funcOperator{
	name:       "DIV",
	resultType: resultNumericType,
	eval: func(args []Expression) Value {
		typ := resultNumericType(args)
		a, ok1 := args[0].Value().Real()
		b, ok2 := args[1].Value().Real()
		if !ok1 || !ok2 || b == 0 {
			return Unknown(typ)
		}
		if typ == TypeInteger {
			return IntegerValue(int64(a) / int64(b))
		}
		return RealValue(a / b)
	},
}

var OpMod = &funcOperator{
	name:       "MOD",
	resultType: fixedType(TypeInteger),
	eval: func(args []Expression) Value {
		a, ok1 := args[0].Value().Int()
		b, ok2 := args[1].Value().Int()
		if !ok1 || !ok2 || b == 0 {
			return Unknown(TypeInteger)
		}
		return IntegerValue(a % b)
	},
}

// ---- array operators ----

var OpArraySize = &funcOperator{
	name:       "ArraySize",
	resultType: fixedType(TypeInteger),
	eval: func(args []Expression) Value {
		v := args[0].Value()
		n := v.Len()
		if n < 0 {
			return Unknown(TypeInteger)
		}
		return IntegerValue(int64(n))
	},
}

// OpArrayAt indexes args[0] (an array) by args[1] (an Integer), returning
// the scalar element type.
var OpArrayAt = &funcOperator{
	name: "ArrayElement",
	resultType: func(args []Expression) ValueType {
		return args[0].ValueType().ElementType()
	},
	eval: func(args []Expression) Value {
		arr := args[0].Value()
		elemType := arr.Type().ElementType()
		idx, ok := args[1].Value().Int()
		if !ok {
			return Unknown(elemType)
		}
		i := int(idx)
		switch elemType {
		case TypeBoolean:
			if b, ok := arr.BoolAt(i); ok {
				return BooleanValue(b)
			}
		case TypeInteger:
			if n, ok := arr.IntAt(i); ok {
				return IntegerValue(n)
			}
		case TypeReal:
			if r, ok := arr.RealAt(i); ok {
				return RealValue(r)
			}
		case TypeString:
			if s, ok := arr.StrAt(i); ok {
				return StringValue(s)
			}
		}
		return Unknown(elemType)
	},
}

// ---- node-state predicates ----

var OpNodeStateEQ = &funcOperator{
	name:       "NodeStateEQ",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		s, ok1 := args[0].Value().NodeStateVal()
		want, ok2 := args[1].Value().NodeStateVal()
		if !ok1 || !ok2 {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(s == want)
	},
}

// OpCommandHandleIsTerminal reports whether a Command node's command
// handle has reached one of its four terminal values (SUCCESS, FAILED,
// DENIED, INTERFACE_ERROR). The handle variable itself is always a known
// Value from construction (it starts at the sentinel COMMAND_HANDLE_UNKNOWN,
// not the tri-state unknown), so testing IsKnown() on it would be
// trivially true before a command is ever dispatched; this operator is
// the one that actually distinguishes "not yet resolved" from "done".
var OpCommandHandleIsTerminal = &funcOperator{
	name:       "CommandHandleIsTerminal",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		h, ok := args[0].Value().CommandHandleVal()
		if !ok {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(h.IsTerminal())
	},
}

var OpNodeOutcomeEQ = &funcOperator{
	name:       "NodeOutcomeEQ",
	resultType: fixedType(TypeBoolean),
	eval: func(args []Expression) Value {
		o, ok1 := args[0].Value().NodeOutcomeVal()
		want, ok2 := args[1].Value().NodeOutcomeVal()
		if !ok1 || !ok2 {
			return Unknown(TypeBoolean)
		}
		return BooleanValue(o == want)
	},
}
