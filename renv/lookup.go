package renv

import (
	"github.com/LaudateCorpus1/fastr/assume"
	"github.com/LaudateCorpus1/fastr/rframe"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// ResultKind tags which arm of the LookupResult sum type is populated.
type ResultKind int

const (
	ResultStableValue ResultKind = iota
	ResultFrameAndSlot
	ResultMissing
	// resultNotCacheable is internal: it signals "found, but cache
	// nothing" (spec.md §4.2's "not cacheable" branch) to Lookup's
	// caller without itself being a cacheable LookupResult.
	resultNotCacheable
)

// LookupResult is the closed sum type of spec.md §4.2, carrying its own
// Assumption per §4.2 so a cached entry can be invalidated without the
// caller re-walking the chain.
type LookupResult struct {
	Kind       ResultKind
	Value      rvalue.Value
	Frame      *rframe.Frame
	Slot       int
	Assumption assume.Assumption
}

func stableValueResult(v rvalue.Value) LookupResult {
	return LookupResult{Kind: ResultStableValue, Value: v, Assumption: assume.New()}
}

func frameAndSlotResult(f *rframe.Frame, slot int) LookupResult {
	return LookupResult{Kind: ResultFrameAndSlot, Frame: f, Slot: slot, Assumption: assume.New()}
}

func missingResult() LookupResult {
	return LookupResult{Kind: ResultMissing, Assumption: assume.New()}
}

// Valid reports whether this result's assumption is still live.
func (lr LookupResult) Valid() bool { return lr.Assumption.Valid() }

// Lookup implements spec.md §4.2's lookup contract: walk the enclosing
// chain from start upward, recording identifier against every FD
// visited's previous_lookups set, and returning (and caching, in
// start's own metadata) the first hit.
func Lookup(reg *FDRegistry, start rframe.FDID, identifier string) LookupResult {
	startMeta := reg.Metadata(start)
	if startMeta == nil {
		return missingResult()
	}
	if cached, ok := startMeta.LookupResults[identifier]; ok && cached.Valid() {
		return cached
	}

	cur := start
	for {
		meta := reg.Metadata(cur)
		if meta == nil {
			break
		}
		meta.PreviousLookups[identifier] = struct{}{}

		fd := reg.Descriptor(cur)
		if fd != nil && fd.Contains(identifier) {
			slot := fd.NameToSlot(identifier)
			info := fd.Slots[slot]

			if meta.Singleton != nil && info.StableValue != nil {
				if v, valid := info.StableValue.Get(); valid {
					res := stableValueResult(v)
					startMeta.LookupResults[identifier] = res
					return res
				}
			}
			if meta.Singleton != nil {
				res := frameAndSlotResult(meta.Singleton, slot)
				startMeta.LookupResults[identifier] = res
				return res
			}
			// Not cacheable: found on a shared function FD with no
			// live stable value and no singleton frame to point at.
			return LookupResult{Kind: resultNotCacheable}
		}

		if meta.Enclosing == noEnclosing {
			break
		}
		cur = meta.Enclosing
	}

	res := missingResult()
	startMeta.LookupResults[identifier] = res
	return res
}

// invalidateCachedLookup removes identifier's cached result (if any)
// from meta, invalidating its assumption first so any holder of a
// stale copy observes the invalidation too.
func invalidateCachedLookup(meta *FDMetadata, identifier string) {
	if res, ok := meta.LookupResults[identifier]; ok {
		res.Assumption.Invalidate()
		delete(meta.LookupResults, identifier)
	}
}

// invalidateSubtree recursively invalidates identifier's cached lookup
// in fd and every FD reachable through its SubDescriptors, per spec.md
// §4.2 step 1: "invalidate all cached LookupResults keyed by I in F and
// in every FD reachable through F.sub_descriptors recursively".
func invalidateSubtree(reg *FDRegistry, fd rframe.FDID, identifier string) {
	meta := reg.Metadata(fd)
	if meta == nil {
		return
	}
	invalidateCachedLookup(meta, identifier)
	for child := range meta.SubDescriptors {
		invalidateSubtree(reg, child, identifier)
	}
}

// Write implements spec.md §4.2's invalidation contract: writing
// identifier to slot in fd invalidates any cached lookup of identifier
// that observed fd as an ancestor, then invalidates the slot's own
// stable-value assumption via rframe.Frame.Write.
func Write(reg *FDRegistry, frame *rframe.Frame, fd rframe.FDID, slot int, identifier string, v rvalue.Value, mode rframe.WriteMode) error {
	meta := reg.Metadata(fd)
	if meta == nil {
		return frame.Write(slot, v, mode)
	}
	if meta.locked {
		return lockedEnvironmentError(meta)
	}
	if meta.lockedBinding != nil && meta.lockedBinding[slot] {
		return lockedBindingError(meta, identifier)
	}
	if _, ok := meta.PreviousLookups[identifier]; ok {
		invalidateSubtree(reg, fd, identifier)
	}
	return frame.Write(slot, v, mode)
}
