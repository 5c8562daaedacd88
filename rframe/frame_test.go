package rframe

import (
	"testing"

	"github.com/LaudateCorpus1/fastr/rcaller"
	"github.com/LaudateCorpus1/fastr/rvalue"
	"github.com/stretchr/testify/require"
)

// newTestFrame builds a frame marked as its FD's singleton owner, the
// usual case for these tests (a manually constructed environment, not a
// function FD shared across activations).
func newTestFrame() (*Frame, *FrameDescriptor) {
	fd := NewFrameDescriptor(1)
	fd.AddSlot("x", KindDouble, true)
	fd.AddSlot("y", KindObject, false)
	f := NewFrame(fd, rcaller.Global())
	f.Singleton = true
	return f, fd
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	f, _ := newTestFrame()
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.5), WriteLocal))
	v, err := f.Read(0)
	require.NoError(t, err)
	require.True(t, v.Equal(rvalue.NewDouble(1.5)))
}

func TestReadUnwrittenSlotReturnsUnbound(t *testing.T) {
	f, _ := newTestFrame()
	v, err := f.Read(1)
	require.NoError(t, err)
	require.Same(t, rvalue.Unbound, v)
}

func TestStableValueRecordedOnFirstWrite(t *testing.T) {
	f, fd := newTestFrame()
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	sv, ok := f.StableValue(0)
	require.True(t, ok)
	require.True(t, sv.Equal(rvalue.NewDouble(1.0)))
	require.True(t, fd.Slots[0].NonLocalModified.Valid())
}

func TestStableValueSurvivesEqualRewrite(t *testing.T) {
	f, _ := newTestFrame()
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	sv1, _ := f.StableValue(0)
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	sv2, ok := f.StableValue(0)
	require.True(t, ok)
	require.True(t, sv1.Equal(sv2))
}

func TestStableValueInvalidatedOnChange(t *testing.T) {
	f, _ := newTestFrame()
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	require.NoError(t, f.Write(0, rvalue.NewDouble(2.0), WriteLocal))
	sv, ok := f.StableValue(0)
	require.True(t, ok)
	require.True(t, sv.Equal(rvalue.NewDouble(2.0)))
}

func TestStableValueClearedAfterBudgetExhausted(t *testing.T) {
	f, fd := newTestFrame()
	fd.Slots[0].SetInvalBudget(1)
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	require.NoError(t, f.Write(0, rvalue.NewDouble(2.0), WriteLocal))
	_, ok := f.StableValue(0)
	require.False(t, ok, "stable value must be cleared once invalidation budget is exhausted")
}

func TestStableValueNotRecordedOnFunctionFD(t *testing.T) {
	fd := NewFrameDescriptor(2)
	fd.AddSlot("x", KindDouble, true)
	// A function FD is shared across activations, so its frames are
	// never marked Singleton.
	f := NewFrame(fd, rcaller.Global())

	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	_, ok := f.StableValue(0)
	require.False(t, ok, "a function-FD slot must never populate a stable value")

	other := NewFrame(fd, rcaller.Global())
	require.NoError(t, other.Write(0, rvalue.NewDouble(2.0), WriteLocal))
	_, ok = other.StableValue(0)
	require.False(t, ok)
}

func TestNonLocalWriteAlwaysInvalidatesNonLocalModified(t *testing.T) {
	f, fd := newTestFrame()
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteNonLocal))
	require.False(t, fd.Slots[0].NonLocalModified.Valid())
}

func TestIrregularFrameInvalidatesNonLocalModifiedOnLocalWrite(t *testing.T) {
	f, fd := newTestFrame()
	f.Irregular = true
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	require.False(t, fd.Slots[0].NonLocalModified.Valid())
}

func TestMultiContextWritePromotesEligibleSlot(t *testing.T) {
	f, fd := newTestFrame()
	require.NoError(t, f.Write(0, rvalue.NewDouble(1.0), WriteLocal))
	f.EnableMultiContext()

	require.NoError(t, f.Write(0, rvalue.NewDouble(9.0), WriteLocal))
	require.False(t, fd.Slots[0].NoMultiSlot.Valid())

	f.SetCurrentContext(1)
	require.NoError(t, f.Write(0, rvalue.NewDouble(99.0), WriteLocal))

	f.SetCurrentContext(0)
	v0, _ := f.Read(0)
	require.True(t, v0.Equal(rvalue.NewDouble(9.0)))

	f.SetCurrentContext(1)
	v1, _ := f.Read(0)
	require.True(t, v1.Equal(rvalue.NewDouble(99.0)))
}

func TestMultiContextDoesNotPromoteIneligibleSlot(t *testing.T) {
	f, fd := newTestFrame()
	f.EnableMultiContext()
	require.NoError(t, f.Write(1, rvalue.NewString("a"), WriteLocal))
	_, promoted := f.multiSlots[1]
	require.False(t, promoted)
	require.True(t, fd.Slots[1].NoMultiSlot.Valid())
}

func TestWriteActiveBindingInvalidatesGivenAssumption(t *testing.T) {
	f, _ := newTestFrame()
	noActiveBinding := newInvalidatable()
	require.NoError(t, f.WriteActiveBinding(1, func() rvalue.Value { return rvalue.Null }, noActiveBinding))
	require.True(t, noActiveBinding.invalidated)
}

func TestWriteOutOfRangeSlotErrors(t *testing.T) {
	f, _ := newTestFrame()
	err := f.Write(5, rvalue.Null, WriteLocal)
	require.Error(t, err)
}

type invalidatable struct{ invalidated bool }

func newInvalidatable() *invalidatable { return &invalidatable{} }

func (i *invalidatable) Invalidate() { i.invalidated = true }
