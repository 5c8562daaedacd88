// Package renv implements the environment hierarchy and lookup cache
// (C4 in the environment-core design, spec.md §4.2): the FD registry
// that tracks each FrameDescriptor's enclosing parent, the cached
// lookup results that skip repeated chain walks, and the invalidation
// contract that keeps those caches sound under arbitrary writes.
//
// Grounded on panyam-sdl's runtime/flowscope.go (FlowScope{Outer,...}
// push/pop nested-scope pattern) for the enclosing-chain shape, and on
// FrameSlotChangeMonitor.java's REnvironment/MaterializedFrame registry
// pattern from _examples/original_source for the lookup-cache contract
// itself.
package renv

import (
	"github.com/LaudateCorpus1/fastr/assume"
	"github.com/LaudateCorpus1/fastr/rframe"
)

// FDMetadata is the per-FD record the registry keeps outside the
// FrameDescriptor itself, per spec.md §9's design note: keeping the
// enclosing chain, lookup caches, and sub-descriptor back-pointers in a
// separate arena keyed by FDID avoids a cyclic reference from
// FrameDescriptor back into the registry.
type FDMetadata struct {
	Name string
	// Singleton is the one frame that owns this FD, for environments
	// that are not function-call FDs (spec.md §4.2: "singleton frame").
	// Nil for function FDs, which many activations share.
	Singleton *rframe.Frame

	// SubDescriptors are the FDs whose Enclosing points at this one.
	// "Weak in spirit": this registry has no GC hook to prune an entry
	// when its owning frame becomes unreachable (there is no GC-less
	// core equivalent of a WeakReference here), so entries are pruned
	// only when the child is re-parented by Attach or Detach.
	SubDescriptors map[rframe.FDID]struct{}

	PreviousLookups map[string]struct{}
	LookupResults   map[string]LookupResult

	Enclosing           rframe.FDID
	EnclosingAssumption assume.Assumption

	// NoActiveBinding is invalidated the first time any slot on this FD
	// becomes an active binding (spec.md §4.1).
	NoActiveBinding assume.Assumption

	locked        bool
	lockedBinding map[int]bool
}

func newFDMetadata(enclosing rframe.FDID) *FDMetadata {
	return &FDMetadata{
		SubDescriptors:      make(map[rframe.FDID]struct{}),
		PreviousLookups:     make(map[string]struct{}),
		LookupResults:       make(map[string]LookupResult),
		Enclosing:           enclosing,
		EnclosingAssumption: assume.New(),
		NoActiveBinding:     assume.New(),
	}
}

// noEnclosing is the sentinel Enclosing value for the root of a chain
// (the empty/global environment has no parent FD).
const noEnclosing rframe.FDID = -1

// FDRegistry is the arena from spec.md §9: FD ids map to their
// metadata, side-stepping the cyclic reference a direct
// FrameDescriptor-to-registry pointer would create.
type FDRegistry struct {
	descs map[rframe.FDID]*rframe.FrameDescriptor
	meta  map[rframe.FDID]*FDMetadata
	next  rframe.FDID
}

// NewFDRegistry creates an empty registry.
func NewFDRegistry() *FDRegistry {
	return &FDRegistry{
		descs: make(map[rframe.FDID]*rframe.FrameDescriptor),
		meta:  make(map[rframe.FDID]*FDMetadata),
	}
}

// NewRoot creates a FrameDescriptor with no enclosing parent (the
// global environment's FD, typically).
func (r *FDRegistry) NewRoot(name string) (*rframe.FrameDescriptor, rframe.FDID) {
	return r.newDescriptor(name, noEnclosing)
}

// NewChild creates a FrameDescriptor enclosed by parent.
func (r *FDRegistry) NewChild(name string, parent rframe.FDID) (*rframe.FrameDescriptor, rframe.FDID) {
	fd, id := r.newDescriptor(name, parent)
	if pm, ok := r.meta[parent]; ok {
		pm.SubDescriptors[id] = struct{}{}
	}
	return fd, id
}

func (r *FDRegistry) newDescriptor(name string, enclosing rframe.FDID) (*rframe.FrameDescriptor, rframe.FDID) {
	id := r.next
	r.next++
	fd := rframe.NewFrameDescriptor(id)
	r.descs[id] = fd
	r.meta[id] = newFDMetadata(enclosing)
	r.meta[id].Name = name
	return fd, id
}

// Descriptor returns the FrameDescriptor for id, or nil if unknown.
func (r *FDRegistry) Descriptor(id rframe.FDID) *rframe.FrameDescriptor {
	return r.descs[id]
}

// Metadata returns the FDMetadata for id, or nil if unknown.
func (r *FDRegistry) Metadata(id rframe.FDID) *FDMetadata {
	return r.meta[id]
}

// SetSingleton records that frame is the one singleton owner of id's FD,
// and marks frame itself so rframe.Frame.Write knows it is safe to
// record a stable value (spec.md §3: "present only for singleton-FD
// slots").
func (r *FDRegistry) SetSingleton(id rframe.FDID, frame *rframe.Frame) {
	if m, ok := r.meta[id]; ok {
		m.Singleton = frame
		frame.Singleton = true
	}
}
