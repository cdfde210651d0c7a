package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliasForwardsReadsAndWrites(t *testing.T) {
	v := NewVariable("speed", TypeReal)
	v.Activate()
	v.Set(RealValue(10))

	a := NewAlias("speedIn", v, false)
	a.Activate()

	got, ok := a.Value().Real()
	assert.True(t, ok)
	assert.Equal(t, 10.0, got)

	a.Set(RealValue(20))
	got, _ = v.Value().Real()
	assert.Equal(t, 20.0, got, "a write through a writable alias must reach the aliased variable")
}

func TestAliasReadOnlyRejectsWrite(t *testing.T) {
	v := NewVariable("speed", TypeReal)
	v.Activate()
	a := NewAlias("speedIn", v, true)
	a.Activate()

	assert.Panics(t, func() {
		a.Set(RealValue(1))
	}, "a write through a read-only (In) alias must fail")
}

func TestAliasNotifiesListenersWhenAliasedValueChanges(t *testing.T) {
	v := NewVariable("speed", TypeReal)
	v.Activate()
	a := NewAlias("speedIn", v, false)
	a.Activate()

	notifications := 0
	a.AddListener(ListenerFunc(func() { notifications++ }))

	v.Set(RealValue(5))
	assert.Equal(t, 1, notifications, "the alias is not a propagation source, so a listener attaches through to the wrapped variable directly")
}
