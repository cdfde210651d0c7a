package domain

import (
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprExpression evaluates a user-authored expr-lang program against a
// fixed set of named PLEXIL variables.
// It compiles once at construction time and, on every read, refuses to
// invoke the compiled program at all unless every referenced variable is
// currently known -- expr-lang has no native unknown/tri-state concept,
// so this guard is what keeps tri-state semantics honest across the
// boundary into a general-purpose expression language.
type ExprExpression struct {
	base    exprBase
	source  string
	typ     ValueType
	program *vm.Program
	names   []string
	args    []Expression

	lastSet   bool
	lastValue Value
}

// NewExprExpression compiles source once. vars maps each free variable
// name the expression references to the domain Expression supplying it.
func NewExprExpression(source string, resultType ValueType, vars map[string]Expression) (*ExprExpression, error) {
	env := make(map[string]interface{}, len(vars))
	names := make([]string, 0, len(vars))
	args := make([]Expression, 0, len(vars))
	for name, ex := range vars {
		env[name] = sampleValue(ex.ValueType())
		names = append(names, name)
		args = append(args, ex)
	}

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, NewDomainError(ErrCodeInvalidInput, "compiling expr operator", err)
	}

	e := &ExprExpression{source: source, typ: resultType, program: program, names: names, args: args}
	e.base.init(e, false)
	return e, nil
}

func (e *ExprExpression) Subexpressions() []Expression { return e.args }
func (e *ExprExpression) handleActivate()               {}
func (e *ExprExpression) handleDeactivate()             { e.lastSet = false }

func (e *ExprExpression) ValueType() ValueType { return e.typ }
func (e *ExprExpression) IsKnown() bool        { return e.Value().IsKnown() }

// Value rebuilds the expr-lang environment from the current operand
// values and runs the compiled program, short-circuiting to Unknown if
// any named variable is unknown or the program errors/panics at runtime
// (e.g. a division by zero inside the user expression).
func (e *ExprExpression) Value() (result Value) {
	env := make(map[string]interface{}, len(e.names))
	for i, name := range e.names {
		v := e.args[i].Value()
		if !v.IsKnown() {
			return Unknown(e.typ)
		}
		env[name] = nativeValue(v)
	}

	defer func() {
		if recover() != nil {
			result = Unknown(e.typ)
		}
	}()

	out, err := expr.Run(e.program, env)
	if err != nil {
		return Unknown(e.typ)
	}
	// expr-lang's "/" is float division: dividing by zero yields an
	// infinity or NaN rather than an error.
	if f, ok := out.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return Unknown(e.typ)
	}
	return valueFromNative(e.typ, out)
}

func (e *ExprExpression) PrintValue() string { return e.Value().String() }

func (e *ExprExpression) Activate()                  { e.base.Activate() }
func (e *ExprExpression) Deactivate()                { e.base.Deactivate() }
func (e *ExprExpression) IsActive() bool             { return e.base.IsActive() }
func (e *ExprExpression) ActivationCount() int       { return e.base.ActivationCount() }
func (e *ExprExpression) AddListener(l Listener)     { e.base.AddListener(l) }
func (e *ExprExpression) RemoveListener(l Listener)  { e.base.RemoveListener(l) }
func (e *ExprExpression) IsPropagationSource() bool  { return e.base.IsPropagationSource() }

func (e *ExprExpression) NotifyChanged() {
	v := e.Value()
	if e.lastSet && e.lastValue.Equal(v) && e.lastValue.IsKnown() == v.IsKnown() {
		return
	}
	e.lastValue = v
	e.lastSet = true
	e.base.notify()
}

func sampleValue(t ValueType) interface{} {
	switch t {
	case TypeBoolean:
		return false
	case TypeInteger, TypeNodeState, TypeNodeOutcome, TypeFailureType, TypeCommandHandle:
		return int64(0)
	case TypeReal:
		return float64(0)
	case TypeString:
		return ""
	case TypeBooleanArray:
		return []bool{}
	case TypeIntegerArray:
		return []int64{}
	case TypeRealArray:
		return []float64{}
	case TypeStringArray:
		return []string{}
	default:
		return nil
	}
}

func nativeValue(v Value) interface{} {
	switch v.Type() {
	case TypeBoolean:
		b, _ := v.Bool()
		return b
	case TypeInteger:
		i, _ := v.Int()
		return i
	case TypeReal:
		r, _ := v.Real()
		return r
	case TypeString:
		s, _ := v.Str()
		return s
	case TypeNodeState, TypeNodeOutcome, TypeFailureType, TypeCommandHandle:
		// Already validated known by the caller; re-derive the backing
		// integer by round-tripping through Real, which widens Integer.
		r, _ := v.Real()
		return int64(r)
	default:
		return nil
	}
}

func valueFromNative(typ ValueType, out interface{}) Value {
	switch typ {
	case TypeBoolean:
		if b, ok := out.(bool); ok {
			return BooleanValue(b)
		}
	case TypeInteger:
		switch n := out.(type) {
		case int:
			return IntegerValue(int64(n))
		case int64:
			return IntegerValue(n)
		case float64:
			return IntegerValue(int64(n))
		}
	case TypeReal:
		switch n := out.(type) {
		case float64:
			return RealValue(n)
		case int:
			return RealValue(float64(n))
		case int64:
			return RealValue(float64(n))
		}
	case TypeString:
		if s, ok := out.(string); ok {
			return StringValue(s)
		}
	}
	return Unknown(typ)
}
