package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolExpr(known bool, val bool) Expression {
	if !known {
		return NewConstant(Unknown(TypeBoolean))
	}
	return NewConstant(BooleanValue(val))
}

func TestOpAndShortCircuitsOnKnownFalse(t *testing.T) {
	cases := []struct {
		name string
		args []Expression
		want Value
	}{
		{"all true", []Expression{boolExpr(true, true), boolExpr(true, true)}, BooleanValue(true)},
		{"one false, one unknown", []Expression{boolExpr(true, false), boolExpr(false, false)}, BooleanValue(false)},
		{"one unknown, rest true", []Expression{boolExpr(true, true), boolExpr(false, false)}, Unknown(TypeBoolean)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := OpAnd.Eval(c.args)
			assert.Equal(t, c.want.IsKnown(), got.IsKnown())
			if c.want.IsKnown() {
				wb, _ := c.want.Bool()
				gb, _ := got.Bool()
				assert.Equal(t, wb, gb)
			}
		})
	}
}

func TestOpOrShortCircuitsOnKnownTrue(t *testing.T) {
	cases := []struct {
		name string
		args []Expression
		want Value
	}{
		{"all false", []Expression{boolExpr(true, false), boolExpr(true, false)}, BooleanValue(false)},
		{"one true, one unknown", []Expression{boolExpr(true, true), boolExpr(false, false)}, BooleanValue(true)},
		{"one unknown, rest false", []Expression{boolExpr(true, false), boolExpr(false, false)}, Unknown(TypeBoolean)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := OpOr.Eval(c.args)
			assert.Equal(t, c.want.IsKnown(), got.IsKnown())
			if c.want.IsKnown() {
				wb, _ := c.want.Bool()
				gb, _ := got.Bool()
				assert.Equal(t, wb, gb)
			}
		})
	}
}

func TestOpXorIsUnknownIfAnyOperandUnknown(t *testing.T) {
	args := []Expression{boolExpr(true, true), boolExpr(false, false)}
	got := OpXor.Eval(args)
	assert.False(t, got.IsKnown(), "XOR has no short-circuit identity element, so any unknown operand makes it unknown")
}

func TestOpXorParity(t *testing.T) {
	got := OpXor.Eval([]Expression{boolExpr(true, true), boolExpr(true, true), boolExpr(true, false)})
	b, ok := got.Bool()
	assert.True(t, ok)
	assert.False(t, b, "an even number of true operands (true, true, false) has even parity")
}

func TestOpNotUnknownPropagates(t *testing.T) {
	got := OpNot.Eval([]Expression{boolExpr(false, false)})
	assert.False(t, got.IsKnown())
}

func TestNumericComparisons(t *testing.T) {
	lhs := NewConstant(IntegerValue(3))
	rhs := NewConstant(IntegerValue(5))

	lt := OpLT.Eval([]Expression{lhs, rhs})
	b, ok := lt.Bool()
	assert.True(t, ok)
	assert.True(t, b)

	ge := OpGE.Eval([]Expression{lhs, rhs})
	b, ok = ge.Bool()
	assert.True(t, ok)
	assert.False(t, b)
}

func TestNumericComparisonUnknownOperand(t *testing.T) {
	lhs := NewConstant(Unknown(TypeInteger))
	rhs := NewConstant(IntegerValue(5))
	got := OpLT.Eval([]Expression{lhs, rhs})
	assert.False(t, got.IsKnown())
}

func TestArithmeticWidensToReal(t *testing.T) {
	a := NewConstant(IntegerValue(2))
	b := NewConstant(RealValue(1.5))
	got := OpAdd.Eval([]Expression{a, b})
	assert.Equal(t, TypeReal, got.Type())
	r, ok := got.Real()
	assert.True(t, ok)
	assert.Equal(t, 3.5, r)
}

func TestDivisionByZeroIsUnknown(t *testing.T) {
	a := NewConstant(IntegerValue(10))
	zero := NewConstant(IntegerValue(0))
	got := OpDiv.Eval([]Expression{a, zero})
	assert.False(t, got.IsKnown())
}

func TestModByZeroIsUnknown(t *testing.T) {
	a := NewConstant(IntegerValue(10))
	zero := NewConstant(IntegerValue(0))
	got := OpMod.Eval([]Expression{a, zero})
	assert.False(t, got.IsKnown())
}

func TestArraySizeAndElementAccess(t *testing.T) {
	arr := NewConstant(IntegerArrayValue([]int64{10, 20, 30}, nil))
	size := OpArraySize.Eval([]Expression{arr})
	n, ok := size.Int()
	assert.True(t, ok)
	assert.EqualValues(t, 3, n)

	idx := NewConstant(IntegerValue(1))
	elem := OpArrayAt.Eval([]Expression{arr, idx})
	v, ok := elem.Int()
	assert.True(t, ok)
	assert.EqualValues(t, 20, v)
}

func TestOpCommandHandleIsTerminal(t *testing.T) {
	cases := []struct {
		name string
		h    CommandHandle
		want bool
	}{
		{"unknown sentinel is not terminal", CommandHandleUnknown, false},
		{"sent is not terminal", CommandSent, false},
		{"success is terminal", CommandSuccess, true},
		{"failed is terminal", CommandFailed, true},
		{"denied is terminal", CommandDenied, true},
		{"interface error is terminal", CommandInterfaceError, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			handle := NewConstant(CommandHandleValue(c.h))
			got := OpCommandHandleIsTerminal.Eval([]Expression{handle})
			b, ok := got.Bool()
			assert.True(t, ok)
			assert.Equal(t, c.want, b)
		})
	}
}

func TestNodeStateEQPredicate(t *testing.T) {
	actual := NewConstant(NodeStateValue(StateFinished))
	want := NewConstant(NodeStateValue(StateFinished))
	got := OpNodeStateEQ.Eval([]Expression{actual, want})
	b, ok := got.Bool()
	assert.True(t, ok)
	assert.True(t, b)

	other := NewConstant(NodeStateValue(StateExecuting))
	got = OpNodeStateEQ.Eval([]Expression{other, want})
	b, ok = got.Bool()
	assert.True(t, ok)
	assert.False(t, b)
}

func TestOperatorApplicationNotifiesOnlyOnChange(t *testing.T) {
	v := NewVariable("x", TypeBoolean)
	v.Activate()
	app := NewOperatorApplication(OpNot, v)
	app.Activate()

	notifications := 0
	app.AddListener(ListenerFunc(func() { notifications++ }))

	v.Set(BooleanValue(true))
	assert.Equal(t, 1, notifications)

	v.Set(BooleanValue(true))
	assert.Equal(t, 1, notifications, "re-setting to the same value must not notify again")

	v.Set(BooleanValue(false))
	assert.Equal(t, 2, notifications)
}
