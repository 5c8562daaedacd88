package renv

import (
	"github.com/LaudateCorpus1/fastr/rerrors"
	"github.com/LaudateCorpus1/fastr/rframe"
)

// LockEnvironment implements the original_source supplement restoring
// FrameSlotChangeMonitor.java's lockEnvironment: once locked, every
// Write to fd's frame is rejected regardless of slot, mirroring R's
// lockEnvironment(env).
func LockEnvironment(reg *FDRegistry, fd rframe.FDID) {
	if meta := reg.Metadata(fd); meta != nil {
		meta.locked = true
	}
}

// IsLocked reports whether fd's environment has been locked.
func IsLocked(reg *FDRegistry, fd rframe.FDID) bool {
	meta := reg.Metadata(fd)
	return meta != nil && meta.locked
}

// LockBinding locks a single slot within fd, mirroring R's
// lockBinding(sym, env): the binding may still be read but never
// rewritten, independent of whether the environment itself is locked.
func LockBinding(reg *FDRegistry, fd rframe.FDID, slot int) {
	meta := reg.Metadata(fd)
	if meta == nil {
		return
	}
	if meta.lockedBinding == nil {
		meta.lockedBinding = make(map[int]bool)
	}
	meta.lockedBinding[slot] = true
}

// BindingIsLocked reports whether slot within fd is individually locked.
func BindingIsLocked(reg *FDRegistry, fd rframe.FDID, slot int) bool {
	meta := reg.Metadata(fd)
	return meta != nil && meta.lockedBinding != nil && meta.lockedBinding[slot]
}

func lockedEnvironmentError(meta *FDMetadata) error {
	return rerrors.NewUserError(rerrors.CodeEnvironmentLocked, "cannot add bindings to a locked environment %q", meta.Name)
}

func lockedBindingError(meta *FDMetadata, identifier string) error {
	return rerrors.NewUserError(rerrors.CodeBindingLocked, "cannot change value of locked binding %q in %q", identifier, meta.Name)
}
