// Package rpromise implements promises (C5 in the environment-core
// design, spec.md §4.4): lazily evaluated argument values that force
// their thunk in a captured environment at most once, install a
// promise-evaluation activation on the dynamic stack while forcing, and
// detect re-entrant forcing as a fatal RecursivePromise.
//
// Grounded on panyam-sdl's decl/runtime.go Future type
// (CallerFrame/Awaited/ResultOpNode) - the teacher's closest analog to a
// lazily-forced value, generalized from an explicit `go`/`wait`
// async-call pair into the eager six-step force protocol spec.md §4.4
// describes.
package rpromise

import (
	"github.com/LaudateCorpus1/fastr/rast"
	"github.com/LaudateCorpus1/fastr/rcaller"
	"github.com/LaudateCorpus1/fastr/rerrors"
	"github.com/LaudateCorpus1/fastr/rframe"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// State is a Promise's force-protocol state, per spec.md §4.4.
type State int

const (
	Unforced State = iota
	Forcing
	Forced
)

// Thunk computes a promise's value when forced. activation is the
// promise-evaluation RCaller installed for the duration of the call, so
// the out-of-scope evaluator can thread it through any nested sys.call
// introspection that runs while the promise is forcing.
type Thunk func(activation *rcaller.RCaller) (rvalue.Value, error)

// Promise is spec.md §3/§4.4's lazy value: a thunk plus the environment
// it closes over, forced at most once.
type Promise struct {
	state       State
	thunk       Thunk
	CapturedEnv *rframe.Frame

	ForcedValue rvalue.Value

	// LogicalCaller is the activation recorded as this promise's caller
	// at the moment forcing began (spec.md §4.4 step 3).
	LogicalCaller *rcaller.RCaller

	// Eager starts true for promises the evaluator can force eagerly
	// with no observable side effect (e.g. a default-argument promise);
	// MarkNonEager clears it once deoptimized by rintrospect.
	Eager bool
}

// Delayed builds an unforced promise closing over env, the primitive
// behind a `delayedAssign`-style builtin. This is a supplement drawn
// from the teacher's Future type and from FrameSlotChangeMonitor.java's
// RPromise references: neither spec.md's distillation nor its
// component table names a constructor, but C5 needs one to be usable at
// all.
func Delayed(thunk Thunk, env *rframe.Frame) *Promise {
	return &Promise{state: Unforced, thunk: thunk, CapturedEnv: env, Eager: true}
}

// MarkNonEager clears Eager, per spec.md §4.4's "Deoptimization": called
// by rintrospect before exposing a frame to user code, so the evaluator
// will not elide this promise's slot.
func (p *Promise) MarkNonEager() { p.Eager = false }

// IsForced reports whether p has completed forcing, without forcing it.
func IsForced(p *Promise) bool { return p.state == Forced }

// PeekValue returns p's forced value without forcing it, and whether one
// is available yet.
func PeekValue(p *Promise) (rvalue.Value, bool) {
	if p.state != Forced {
		return nil, false
	}
	return p.ForcedValue, true
}

// Force implements spec.md §4.4's six-step protocol.
func Force(p *Promise, caller *rcaller.RCaller) (rvalue.Value, error) {
	// 1. Already forced: return the cached value.
	if p.state == Forced {
		return p.ForcedValue, nil
	}
	// 2. Re-entrant forcing is fatal.
	if p.state == Forcing {
		return nil, rerrors.NewInvariantError(rerrors.CodeRecursivePromise, "promise forced re-entrantly")
	}

	// 3. Mark forcing, record the logical caller, install a
	// promise-evaluation activation on the dynamic stack.
	p.state = Forcing
	p.LogicalCaller = caller
	promiseActivation := rcaller.New(caller.Depth, nil, caller, rast.NoSyntaxNode, rcaller.PromiseEvaluation, caller, true)

	// 4. Evaluate the thunk in the captured environment. The thunk
	// itself is the out-of-scope evaluator's closure over CapturedEnv;
	// this module just calls it under the installed activation.
	v, err := p.thunk(promiseActivation)

	if err != nil {
		// 6. On failure, clear the forcing flag so the promise is left
		// unforced rather than stuck - a failed force (including a
		// RecursivePromise) must be retriable, not a permanent zombie.
		p.state = Unforced
		return nil, err
	}

	// 5. Success: store, mark forced.
	p.ForcedValue = v
	p.state = Forced
	return v, nil
}
