package assume

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssumptionValidUntilInvalidated(t *testing.T) {
	a := New()
	require.True(t, a.Valid())
	a.Invalidate()
	require.False(t, a.Valid())
}

func TestAssumptionSharedAcrossCopies(t *testing.T) {
	a := New()
	b := a // copies share the same counter
	require.True(t, b.Valid())
	a.Invalidate()
	require.False(t, b.Valid())
}

func TestZeroAssumptionIsInvalid(t *testing.T) {
	var a Assumption
	require.True(t, a.IsZero())
	require.False(t, a.Valid())
}

func TestCellGetReflectsInvalidation(t *testing.T) {
	c := NewCell(42)
	v, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, 42, v)

	c.Invalidate()
	_, ok = c.Get()
	require.False(t, ok)
}

func TestNilCellGetIsSafe(t *testing.T) {
	var c *Cell[int]
	v, ok := c.Get()
	require.False(t, ok)
	require.Equal(t, 0, v)
}
