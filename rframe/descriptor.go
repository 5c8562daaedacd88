// Package rframe implements the frame & slot store (C3 in the
// environment-core design, spec.md §3 and §4.1): per-activation variable
// bindings, the per-slot stable-value and non-local-modified
// assumptions, and the write/read algorithms those assumptions protect.
//
// Grounded on the teacher's Frame type (panyam-sdl's decl/runtime.go),
// generalized from a plain map-backed scope into a descriptor-indexed
// slot array carrying the metadata spec.md §3 and §4.1 require, and on
// FrameSlotChangeMonitor.java's FrameDescriptorMetaData /
// FrameSlotInfoImpl shapes from _examples/original_source.
package rframe

import (
	"github.com/LaudateCorpus1/fastr/assume"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// SlotKind is the declared storage kind of a slot, per spec.md §3.
type SlotKind int

const (
	KindBoolean SlotKind = iota
	KindByte
	KindInt
	KindDouble
	KindObject
)

// FDID identifies a FrameDescriptor within a registry. Kept as a plain
// int (rather than a pointer) so renv's arena can hold weak-in-spirit
// back-references without import cycles or actual weak pointers.
type FDID int64

// FrameDescriptor is the schema object of spec.md §3: it names a set of
// slots and their declared kinds. Many activations share one
// FrameDescriptor (function frames); a manually constructed environment
// has a unique one.
type FrameDescriptor struct {
	ID    FDID
	Names []string
	Kinds []SlotKind
	Slots []*SlotInfo
	// index speeds up NameToSlot; rebuilt lazily.
	index map[string]int
}

// NewFrameDescriptor creates an empty, growable descriptor.
func NewFrameDescriptor(id FDID) *FrameDescriptor {
	return &FrameDescriptor{ID: id, index: make(map[string]int)}
}

// AddSlot appends a new slot, creating its SlotInfo (spec.md §3,
// "Slot info is created when a slot is added and lives as long as its
// FD"). possibleMultiSlot is the static bit spec.md §3 describes for
// singleton non-new-env slots.
func (fd *FrameDescriptor) AddSlot(name string, kind SlotKind, possibleMultiSlot bool) int {
	idx := len(fd.Names)
	fd.Names = append(fd.Names, name)
	fd.Kinds = append(fd.Kinds, kind)
	fd.Slots = append(fd.Slots, newSlotInfo(possibleMultiSlot))
	if fd.index == nil {
		fd.index = make(map[string]int)
	}
	fd.index[name] = idx
	return idx
}

// NameToSlot returns the slot index for name, or -1 if absent.
func (fd *FrameDescriptor) NameToSlot(name string) int {
	if fd.index == nil {
		return -1
	}
	idx, ok := fd.index[name]
	if !ok {
		return -1
	}
	return idx
}

// Contains reports whether this descriptor declares name.
func (fd *FrameDescriptor) Contains(name string) bool {
	return fd.NameToSlot(name) >= 0
}

// SlotInfo is the per-slot record of spec.md §3.
type SlotInfo struct {
	NonLocalModified assume.Assumption
	// StableValue is present only for singleton-FD slots (function-FD
	// slots never populate this - there is no single frame to be
	// "the" stable binding for). Nil until the first write makes it
	// eligible.
	StableValue *assume.Cell[rvalue.Value]
	invalCount  int
	invalBudget int
	// NoMultiSlot is cleared the first time this slot is promoted to
	// multi-context storage (spec.md §5).
	NoMultiSlot assume.Assumption
	// PossibleMultiSlot is the static bit spec.md §3 describes.
	PossibleMultiSlot bool
	// ActiveBinding holds the callable-getter wrapper when this slot
	// is an active binding (spec.md §4.1's "Active bindings"); nil for
	// a plain binding.
	ActiveBinding any
}

func newSlotInfo(possibleMultiSlot bool) *SlotInfo {
	return &SlotInfo{
		NonLocalModified:  assume.New(),
		NoMultiSlot:       assume.New(),
		PossibleMultiSlot: possibleMultiSlot,
		invalBudget:       MaxInvalLocal,
	}
}

// MaxInval caps, per spec.md §3: "an invalidation counter capped at
// MAX_INVAL (2 for local, 1 for the global environment) after which no
// new stable value is recorded."
const (
	MaxInvalLocal  = 2
	MaxInvalGlobal = 1
)

// SetInvalBudget overrides a slot's invalidation budget - used when the
// owning frame is the global environment (spec.md §3).
func (s *SlotInfo) SetInvalBudget(budget int) { s.invalBudget = budget }

// invalidationsExhausted reports whether this slot has used up its
// stable-value invalidation budget, per spec.md §3 and §4.1.
func (s *SlotInfo) invalidationsExhausted() bool {
	return s.invalCount >= s.invalBudget
}
