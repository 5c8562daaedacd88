package renv

import (
	"testing"

	"github.com/LaudateCorpus1/fastr/rcaller"
	"github.com/LaudateCorpus1/fastr/rframe"
	"github.com/LaudateCorpus1/fastr/rvalue"
	"github.com/stretchr/testify/require"
)

func newChain() (*FDRegistry, rframe.FDID, rframe.FDID, *rframe.Frame, *rframe.Frame) {
	reg := NewFDRegistry()
	parentFD, parentID := reg.NewRoot("global")
	parentFD.AddSlot("g", rframe.KindObject, false)
	parentFrame := rframe.NewFrame(parentFD, rcaller.Global())
	reg.SetSingleton(parentID, parentFrame)

	childFD, childID := reg.NewChild("local", parentID)
	childFD.AddSlot("x", rframe.KindObject, false)
	childFrame := rframe.NewFrame(childFD, rcaller.Global())
	reg.SetSingleton(childID, childFrame)

	return reg, parentID, childID, parentFrame, childFrame
}

func TestLookupFindsLocalBeforeEnclosing(t *testing.T) {
	reg, parentID, childID, parentFrame, childFrame := newChain()
	require.NoError(t, parentFrame.Write(0, rvalue.NewString("outer"), rframe.WriteLocal))
	require.NoError(t, childFrame.Write(0, rvalue.NewString("inner"), rframe.WriteLocal))

	res := Lookup(reg, childID, "x")
	require.Equal(t, ResultStableValue, res.Kind)
	require.True(t, res.Value.Equal(rvalue.NewString("inner")))
	_ = parentID
}

func TestLookupWalksEnclosingChain(t *testing.T) {
	reg, parentID, childID, parentFrame, _ := newChain()
	require.NoError(t, parentFrame.Write(0, rvalue.NewString("outer"), rframe.WriteLocal))

	res := Lookup(reg, childID, "g")
	require.Equal(t, ResultStableValue, res.Kind)
	require.True(t, res.Value.Equal(rvalue.NewString("outer")))
	_ = parentID
}

func TestLookupMissingReturnsMissing(t *testing.T) {
	reg, _, childID, _, _ := newChain()
	res := Lookup(reg, childID, "nope")
	require.Equal(t, ResultMissing, res.Kind)
}

func TestWriteInvalidatesCachedLookupObservedByChild(t *testing.T) {
	reg, parentID, childID, parentFrame, _ := newChain()
	require.NoError(t, parentFrame.Write(0, rvalue.NewString("outer"), rframe.WriteLocal))

	first := Lookup(reg, childID, "g")
	require.True(t, first.Valid())

	require.NoError(t, Write(reg, parentFrame, parentID, 0, "g", rvalue.NewString("changed"), rframe.WriteLocal))
	require.False(t, first.Assumption.Valid(), "invalidation must reach a lookup cached by a child FD")
}

func TestAttachInvalidatesSubtree(t *testing.T) {
	reg, parentID, childID, parentFrame, _ := newChain()
	require.NoError(t, parentFrame.Write(0, rvalue.NewString("outer"), rframe.WriteLocal))
	cached := Lookup(reg, childID, "g")
	require.True(t, cached.Valid())

	otherRoot, otherID := reg.NewRoot("other")
	_ = otherRoot

	Attach(reg, childID, otherID)
	require.False(t, cached.Assumption.Valid())
	meta := reg.Metadata(childID)
	require.Equal(t, otherID, meta.Enclosing)
	_ = parentID
}

func TestDetachResetsEnclosing(t *testing.T) {
	reg, parentID, childID, _, _ := newChain()
	Detach(reg, childID)
	meta := reg.Metadata(childID)
	require.Equal(t, noEnclosing, meta.Enclosing)
	parentMeta := reg.Metadata(parentID)
	_, stillChild := parentMeta.SubDescriptors[childID]
	require.False(t, stillChild)
}

func TestLockedEnvironmentRejectsWrite(t *testing.T) {
	reg, parentID, _, parentFrame, _ := newChain()
	LockEnvironment(reg, parentID)
	require.True(t, IsLocked(reg, parentID))

	err := Write(reg, parentFrame, parentID, 0, "g", rvalue.NewString("x"), rframe.WriteLocal)
	require.Error(t, err)
}

func TestLockedBindingRejectsWriteToThatSlotOnly(t *testing.T) {
	reg, parentID, _, parentFrame, _ := newChain()
	LockBinding(reg, parentID, 0)
	require.True(t, BindingIsLocked(reg, parentID, 0))

	err := Write(reg, parentFrame, parentID, 0, "g", rvalue.NewString("x"), rframe.WriteLocal)
	require.Error(t, err)
}
