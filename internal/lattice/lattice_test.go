package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combo/internal/tarval"
)

func TestMeetTopIsIdentity(t *testing.T) {
	c := ConstElem(tarval.Int(32, false, 5))
	assert.True(t, Equal(Meet(TopElem, c), c))
	assert.True(t, Equal(Meet(c, TopElem), c))
}

func TestMeetBottomAbsorbs(t *testing.T) {
	c := ConstElem(tarval.Int(32, false, 5))
	assert.True(t, Equal(Meet(BottomElem, c), BottomElem))
	assert.True(t, Equal(Meet(c, BottomElem), BottomElem))
}

func TestMeetEqualConstants(t *testing.T) {
	a := ConstElem(tarval.Int(32, false, 7))
	b := ConstElem(tarval.Int(32, false, 7))
	require.True(t, Equal(Meet(a, b), a))
}

func TestMeetDistinctConstantsIsBottom(t *testing.T) {
	a := ConstElem(tarval.Int(32, false, 7))
	b := ConstElem(tarval.Int(32, false, 8))
	assert.Equal(t, Bottom, Meet(a, b).Kind)
}

func TestMeetConstantAndSymConstIsBottom(t *testing.T) {
	a := ConstElem(tarval.Int(32, false, 7))
	b := SymConstElem(tarval.OfEntity(tarval.NewEntity("g")))
	assert.Equal(t, Bottom, Meet(a, b).Kind)
}

func TestMeetReachableUnreachable(t *testing.T) {
	assert.Equal(t, Reachable, Meet(ReachableElem, UnreachableElem).Kind)
	assert.Equal(t, Reachable, Meet(UnreachableElem, ReachableElem).Kind)
}

func TestMonotonicFromTopAllowed(t *testing.T) {
	c := ConstElem(tarval.Int(32, false, 1))
	assert.True(t, Monotonic(TopElem, c))
	assert.True(t, Monotonic(TopElem, BottomElem))
}

func TestMonotonicSameIsAllowed(t *testing.T) {
	c := ConstElem(tarval.Int(32, false, 1))
	assert.True(t, Monotonic(c, c))
}

func TestMonotonicDescentToBottomAllowed(t *testing.T) {
	c := ConstElem(tarval.Int(32, false, 1))
	assert.True(t, Monotonic(c, BottomElem))
}

func TestMonotonicConstantToDifferentConstantForbidden(t *testing.T) {
	a := ConstElem(tarval.Int(32, false, 1))
	b := ConstElem(tarval.Int(32, false, 2))
	assert.False(t, Monotonic(a, b))
}

func TestMonotonicBottomToTopForbidden(t *testing.T) {
	c := ConstElem(tarval.Int(32, false, 1))
	assert.False(t, Monotonic(BottomElem, TopElem))
	assert.False(t, Monotonic(c, TopElem))
}

func TestMonotonicReachableLatches(t *testing.T) {
	assert.True(t, Monotonic(UnreachableElem, ReachableElem))
	assert.False(t, Monotonic(ReachableElem, UnreachableElem))
	assert.True(t, Monotonic(TopElem, ReachableElem))
}
