package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprExpressionEvaluatesAgainstNamedVariables(t *testing.T) {
	x := NewVariable("x", TypeInteger)
	x.Activate()
	x.Set(IntegerValue(3))
	y := NewVariable("y", TypeInteger)
	y.Activate()
	y.Set(IntegerValue(4))

	e, err := NewExprExpression("x*x + y*y", TypeInteger, map[string]Expression{"x": x, "y": y})
	require.NoError(t, err)
	e.Activate()

	got := e.Value()
	n, ok := got.Int()
	require.True(t, ok)
	assert.EqualValues(t, 25, n)
}

func TestExprExpressionUnknownOperandShortCircuitsToUnknown(t *testing.T) {
	x := NewVariable("x", TypeInteger)
	x.Activate()
	// x is never Set, so it stays unknown.

	e, err := NewExprExpression("x + 1", TypeInteger, map[string]Expression{"x": x})
	require.NoError(t, err)
	e.Activate()

	assert.False(t, e.IsKnown(), "an unknown referenced variable must short-circuit the whole expression to unknown, since expr-lang has no native tri-state concept")
}

func TestExprExpressionRuntimeErrorYieldsUnknownNotPanic(t *testing.T) {
	x := NewVariable("x", TypeInteger)
	x.Activate()
	x.Set(IntegerValue(0))

	e, err := NewExprExpression("10 / x", TypeInteger, map[string]Expression{"x": x})
	require.NoError(t, err)
	e.Activate()

	assert.NotPanics(t, func() {
		got := e.Value()
		assert.False(t, got.IsKnown())
	})
}

func TestExprExpressionCompileErrorIsReturnedNotPanicked(t *testing.T) {
	_, err := NewExprExpression("x +++ 1", TypeInteger, map[string]Expression{"x": NewConstant(IntegerValue(1))})
	assert.Error(t, err)
}

func TestExprExpressionBooleanProgram(t *testing.T) {
	alt := NewVariable("altitude", TypeReal)
	alt.Activate()
	alt.Set(RealValue(120))

	e, err := NewExprExpression("altitude > 100", TypeBoolean, map[string]Expression{"altitude": alt})
	require.NoError(t, err)
	e.Activate()

	b, ok := e.Value().Bool()
	require.True(t, ok)
	assert.True(t, b)
}
