package renv

import (
	"github.com/LaudateCorpus1/fastr/assume"
	"github.com/LaudateCorpus1/fastr/rframe"
)

// invalidateAllCached drops every cached lookup in meta, invalidating
// each entry's assumption first.
func invalidateAllCached(meta *FDMetadata) {
	for id, res := range meta.LookupResults {
		res.Assumption.Invalidate()
		delete(meta.LookupResults, id)
	}
	meta.PreviousLookups = make(map[string]struct{})
}

// invalidateAllCachedRecursive applies invalidateAllCached to fd and
// every FD reachable through its SubDescriptors.
func invalidateAllCachedRecursive(reg *FDRegistry, fd rframe.FDID) {
	meta := reg.Metadata(fd)
	if meta == nil {
		return
	}
	invalidateAllCached(meta)
	for child := range meta.SubDescriptors {
		invalidateAllCachedRecursive(reg, child)
	}
}

// Attach implements spec.md §4.2's enclosing-chain rewiring for
// attaching child under a new parent: invalidates all cached lookups in
// child's sub-tree, resets previous_lookups, and updates the
// sub-descriptor back-pointers on both the old and new parent.
func Attach(reg *FDRegistry, child, newParent rframe.FDID) {
	childMeta := reg.Metadata(child)
	if childMeta == nil {
		return
	}
	if oldParentMeta := reg.Metadata(childMeta.Enclosing); oldParentMeta != nil {
		delete(oldParentMeta.SubDescriptors, child)
	}
	childMeta.Enclosing = newParent
	childMeta.EnclosingAssumption.Invalidate()
	childMeta.EnclosingAssumption = assume.New()
	if newParentMeta := reg.Metadata(newParent); newParentMeta != nil {
		newParentMeta.SubDescriptors[child] = struct{}{}
	}
	invalidateAllCachedRecursive(reg, child)
}

// Detach implements spec.md §4.2's rewiring for detaching child from its
// current parent, leaving it enclosed by nothing (noEnclosing).
func Detach(reg *FDRegistry, child rframe.FDID) {
	childMeta := reg.Metadata(child)
	if childMeta == nil {
		return
	}
	if parentMeta := reg.Metadata(childMeta.Enclosing); parentMeta != nil {
		delete(parentMeta.SubDescriptors, child)
	}
	childMeta.Enclosing = noEnclosing
	childMeta.EnclosingAssumption.Invalidate()
	childMeta.EnclosingAssumption = assume.New()
	invalidateAllCachedRecursive(reg, child)
}
