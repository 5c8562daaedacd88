// Package rerrors implements the error taxonomy of spec.md §7: user
// errors (surfaced with a caller activation), runtime invariant
// violations (fatal, unwind to the top level), and the "assumption
// invalidation is not an error" distinction.
//
// Grounded on the teacher package (panyam-sdl's runtime/errors.go), but
// with a Code constant per error case and two structured error types in
// place of its sentinel values and fmt.Errorf wrapping.
package rerrors

import "fmt"

// Code names one of the user-error or invariant-violation codes spec.md
// §6 and §7 enumerate.
type Code string

const (
	CodeNotThatManyFrames Code = "NotThatManyFrames"
	CodeInvalidArgument   Code = "InvalidArgument"
	CodeInvalidMode       Code = "InvalidMode"
	CodeMustBeEnviron     Code = "MustBeEnviron"
	CodeEnvironmentLocked Code = "EnvironmentLocked"
	CodeBindingLocked     Code = "BindingLocked"
	CodeIOError           Code = "IOError"

	CodeRecursivePromise Code = "RecursivePromise"
	CodeInvalidCall      Code = "InvalidCall"
	CodeInvalidAssumption Code = "InvalidAssumption"
)

// Caller is the minimal activation shape a UserError needs to render a
// source position. rcaller.RCaller satisfies it; kept as an interface
// here so rerrors has no dependency on rcaller (it is the lower-level
// package; rcaller depends on rerrors for CodeInvalidCall, not the
// other way around).
type Caller interface {
	// SourcePosition returns the best-available "file:line" string for
	// this activation, or "" if it has none.
	SourcePosition() string
}

// UserError is spec.md §7's "surfaced to the user" class: errors
// carrying the best-available caller activation, located by walking up
// from the failing node to the nearest activation with a valid syntax
// node (spec.md §7, "Propagation policy").
type UserError struct {
	Code    Code
	Message string
	Caller  Caller
}

func (e *UserError) Error() string {
	if e.Caller != nil {
		if pos := e.Caller.SourcePosition(); pos != "" {
			return fmt.Sprintf("%s (at %s)", e.Message, pos)
		}
	}
	return e.Message
}

// NewUserError builds a UserError with no caller attached; call
// WithCaller to attach one once the nearest valid activation is known.
func NewUserError(code Code, format string, args ...any) *UserError {
	return &UserError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCaller returns a copy of e with Caller set, leaving e unmodified.
func (e *UserError) WithCaller(c Caller) *UserError {
	cp := *e
	cp.Caller = c
	return &cp
}

// InvariantError is spec.md §7's fatal class: runtime invariant
// violations that unwind the current evaluation and are reported at the
// top level. No user-visible handler ever catches one.
type InvariantError struct {
	Code    Code
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated [%s]: %s", e.Code, e.Message)
}

func NewInvariantError(code Code, format string, args ...any) *InvariantError {
	return &InvariantError{Code: code, Message: fmt.Sprintf(format, args...)}
}
