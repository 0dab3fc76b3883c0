package tarval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntMasksToWidth(t *testing.T) {
	v := Int(8, false, 0x1ff)
	assert.Equal(t, uint64(0xff), v.Uint())
	assert.Equal(t, 8, v.Width())
}

func TestIntWideWidthUnmasked(t *testing.T) {
	v := Int(64, false, ^uint64(0))
	assert.Equal(t, ^uint64(0), v.Uint())
}

func TestNullAndOne(t *testing.T) {
	assert.True(t, Null(32, false).Equal(Int(32, false, 0)))
	assert.True(t, One(32, false).Equal(Int(32, false, 1)))
}

func TestAllOnesMasksToWidth(t *testing.T) {
	v := AllOnes(4)
	assert.Equal(t, uint64(0xf), v.Uint())
}

func TestAdd(t *testing.T) {
	a := Int(8, false, 200)
	b := Int(8, false, 100)
	got := Add(a, b)
	// 300 mod 256 == 44
	assert.Equal(t, uint64(44), got.Uint())
	assert.Equal(t, 8, got.Width())
}

func TestSubWraps(t *testing.T) {
	a := Int(8, false, 0)
	b := Int(8, false, 1)
	got := Sub(a, b)
	assert.Equal(t, uint64(0xff), got.Uint())
}

func TestEor(t *testing.T) {
	a := Int(8, false, 0b1010)
	b := Int(8, false, 0b0110)
	got := Eor(a, b)
	assert.Equal(t, uint64(0b1100), got.Uint())
}

func TestAnd(t *testing.T) {
	a := Int(8, false, 0b1010)
	b := Int(8, false, 0b0110)
	got := And(a, b)
	assert.Equal(t, uint64(0b0010), got.Uint())
}

func TestOr(t *testing.T) {
	a := Int(8, false, 0b1010)
	b := Int(8, false, 0b0110)
	got := Or(a, b)
	assert.Equal(t, uint64(0b1110), got.Uint())
}

func TestShl(t *testing.T) {
	a := Int(8, false, 0b0001)
	got := Shl(a, Int(8, false, 3))
	assert.Equal(t, uint64(0b1000), got.Uint())
}

func TestShlOverflowMasksToWidth(t *testing.T) {
	a := Int(8, false, 0b11111111)
	got := Shl(a, Int(8, false, 4))
	assert.Equal(t, uint64(0xf0), got.Uint())
}

func TestShr(t *testing.T) {
	a := Int(8, false, 0b10000000)
	got := Shr(a, Int(8, false, 4))
	assert.Equal(t, uint64(0b1000), got.Uint())
}

func TestEqualRequiresSameWidth(t *testing.T) {
	a := Int(8, false, 5)
	b := Int(16, false, 5)
	assert.False(t, a.Equal(b))
}

func TestEqualBadIsAlwaysEqual(t *testing.T) {
	assert.True(t, Bad.Equal(Bad))
}

func TestEqualEntityByName(t *testing.T) {
	a := OfEntity(NewEntity("g"))
	b := OfEntity(NewUnstableEntity("g"))
	assert.True(t, a.Equal(b), "entity equality compares Name, not stability")
}

func TestCompareEqualAndNotEqual(t *testing.T) {
	a := Int(32, false, 7)
	b := Int(32, false, 7)
	c := Int(32, false, 8)
	assert.True(t, Compare(Equal, a, b))
	assert.False(t, Compare(NotEqual, a, b))
	assert.True(t, Compare(NotEqual, a, c))
}

func TestCompareUnsignedLess(t *testing.T) {
	a := Int(8, false, 5)
	b := Int(8, false, 250)
	assert.True(t, Compare(Less, a, b))
	assert.False(t, Compare(Less, b, a))
}

func TestCompareSignedLess(t *testing.T) {
	// Width 64 stores the full two's-complement bit pattern, so the raw
	// uint64 payload for -5 compares correctly once reinterpreted as int64;
	// Compare must pick that reinterpretation when Signed() is set.
	neg := Int(64, true, uint64(int64(-5)))
	pos := Int(64, true, 5)
	assert.True(t, Compare(Less, neg, pos))
	assert.False(t, Compare(Less, pos, neg))
}

func TestCompareLessEqualAndGreaterEqual(t *testing.T) {
	a := Int(32, false, 3)
	b := Int(32, false, 3)
	c := Int(32, false, 4)
	assert.True(t, Compare(LessEqual, a, b))
	assert.True(t, Compare(GreaterEqual, a, b))
	assert.True(t, Compare(LessEqual, a, c))
	assert.False(t, Compare(GreaterEqual, a, c))
}

func TestRelationPredicates(t *testing.T) {
	assert.True(t, Equal.IncludesEqual())
	assert.True(t, LessEqual.IncludesEqual())
	assert.True(t, GreaterEqual.IncludesEqual())
	assert.False(t, Less.IncludesEqual())

	assert.True(t, Less.IsStrict())
	assert.True(t, Greater.IsStrict())
	assert.False(t, Equal.IsStrict())
}

func TestStringFormsByKind(t *testing.T) {
	require.Equal(t, "5:i32", Int(32, false, 5).String())
	require.Equal(t, "true", Bool(true).String())
	require.Equal(t, "&g", OfEntity(NewEntity("g")).String())
	require.Equal(t, "<bad>", Bad.String())
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, Int(32, false, 1).IsInt())
	assert.True(t, Bool(true).IsBool())
	assert.True(t, OfEntity(NewEntity("g")).IsEntity())
	assert.True(t, Bad.IsBad())
}
