package executor

import (
	"testing"

	"github.com/plexilrun/plexil/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArbiterGrantsUpToCapacity(t *testing.T) {
	a := NewArbiter()
	specs := []domain.ResourceSpec{{Name: "battery", UpperBound: 2}}

	assert.True(t, a.Request("n1", specs))
	assert.True(t, a.Request("n2", specs))
	assert.False(t, a.Request("n3", specs), "a third request must be denied once capacity is exhausted")
}

func TestArbiterRequestIsAllOrNothingAcrossResources(t *testing.T) {
	a := NewArbiter()
	wide := []domain.ResourceSpec{{Name: "wide", UpperBound: 5}}
	narrow := []domain.ResourceSpec{{Name: "narrow", UpperBound: 1}}

	require.True(t, a.Request("holder", narrow))

	both := []domain.ResourceSpec{{Name: "wide", UpperBound: 5}, {Name: "narrow", UpperBound: 1}}
	granted := a.Request("contender", both)
	assert.False(t, granted, "a combined request must fail entirely if any single resource is unavailable")

	// Verify no partial hold was left on "wide".
	assert.True(t, a.Request("another", wide), "the wide resource must still have free capacity since the combined request held nothing back")
}

func TestArbiterReleasePromotesOldestWaiter(t *testing.T) {
	a := NewArbiter()
	specs := []domain.ResourceSpec{{Name: "battery", UpperBound: 1}}

	require.True(t, a.Request("first", specs))
	require.False(t, a.Request("second", specs))
	require.False(t, a.Request("third", specs))

	promoted := a.Release("first", specs)
	require.Len(t, promoted, 1)
	assert.Equal(t, "second", promoted[0], "release must promote the oldest (FIFO) waiter")

	assert.Equal(t, []string{"third"}, a.PendingNodes())
}

func TestArbiterReentrantRequestNeedsNoExtraCapacity(t *testing.T) {
	a := NewArbiter()
	specs := []domain.ResourceSpec{{Name: "battery", UpperBound: 1}}
	require.True(t, a.Request("n1", specs))
	assert.True(t, a.Request("n1", specs), "a node already holding a resource may re-request it without consuming more capacity")
}

func TestArbiterReleaseOfUnheldResourcePanics(t *testing.T) {
	a := NewArbiter()
	specs := []domain.ResourceSpec{{Name: "battery", UpperBound: 1}}
	assert.Panics(t, func() {
		a.Release("nobody", specs)
	}, "releasing a resource never held is an internal invariant violation")
}
