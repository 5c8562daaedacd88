// Package rintrospect implements the stack-introspection builtins (C6
// in the environment-core design, spec.md §4.5): sys.call, sys.frame,
// sys.frames, sys.nframe, sys.parent, sys.parents, sys.function,
// parent.frame, and match.call, all built on C2's RCaller chain.
//
// Grounded on panyam-sdl's runtime/exectracer.go (ExecutionTracer's
// push/pop call-stack bookkeeping and Enter/Exit event recording) for
// the general shape of "walk the stack and report on a numbered frame",
// generalized onto rcaller's depth/previous/parent model and the exact
// decode_frame_number/unwrap rules of spec.md §4.3/§4.5.
package rintrospect

import (
	"github.com/LaudateCorpus1/fastr/rast"
	"github.com/LaudateCorpus1/fastr/rcaller"
	"github.com/LaudateCorpus1/fastr/rerrors"
	"github.com/LaudateCorpus1/fastr/rframe"
	"github.com/LaudateCorpus1/fastr/rpromise"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// Host is the seam onto the out-of-scope evaluator's activation-to-frame
// association: this module knows how to resolve a frame *number*, but
// only the evaluator knows which Frame and function value actually ran
// at a given depth.
type Host interface {
	// FrameAt returns the environment view for the activation at depth,
	// or nil if none is tracked there.
	FrameAt(depth int) *rframe.Frame
	// FunctionAt returns the function value bound to the activation at
	// depth, or rvalue.Null if none (spec.md §4.5: "or null if absent").
	FunctionAt(depth int) rvalue.Value
}

// FunctionValue is the adapter a function rvalue.Value implements to
// expose the syntax node Recall needs to re-invoke it.
type FunctionValue interface {
	rvalue.Value
	Node() rast.SyntaxNode
}

// PromiseHolder is the adapter a promise-bearing rvalue.Value implements
// so SysFrame's deoptimization pass can reach the underlying Promise
// without rvalue depending on rpromise.
type PromiseHolder interface {
	rvalue.Value
	Promise() *rpromise.Promise
}

// DecodeFrameNumber implements spec.md §4.5's decode_frame_number(c, n):
// let d = unwrap_promise_caller(c.previous).depth; n > 0 requires n <= d
// and resolves to n; n <= 0 resolves to d + n.
func DecodeFrameNumber(c *rcaller.RCaller, n int) (int, error) {
	prev := rcaller.UnwrapPrevious(c)
	d := 0
	if prev != nil {
		d = prev.Depth
	}
	if n > 0 {
		if n > d {
			return 0, rerrors.NewUserError(rerrors.CodeNotThatManyFrames, "not that many frames on the stack")
		}
		return n, nil
	}
	resolved := d + n
	if resolved < 0 {
		return 0, rerrors.NewUserError(rerrors.CodeNotThatManyFrames, "not that many frames on the stack")
	}
	return resolved, nil
}

// activationAtDepth walks c0's Previous chain (unwrapping promise
// frames at each step) down to the first activation at depth, or nil if
// the chain is exhausted first.
func activationAtDepth(c0 *rcaller.RCaller, depth int) *rcaller.RCaller {
	cur := rcaller.UnwrapPromiseCaller(c0)
	for cur != nil && cur.Depth > depth {
		cur = rcaller.UnwrapPrevious(cur)
	}
	if cur != nil && cur.Depth == depth {
		return cur
	}
	return nil
}

// SysCall implements sys.call(which): the syntax node of the numbered
// activation.
func SysCall(c0 *rcaller.RCaller, which int) (rast.SyntaxNode, error) {
	depth, err := DecodeFrameNumber(c0, which)
	if err != nil {
		return nil, err
	}
	act := activationAtDepth(c0, depth)
	if act == nil {
		return nil, rerrors.NewUserError(rerrors.CodeNotThatManyFrames, "not that many frames on the stack")
	}
	return act.SyntaxNode, nil
}

// deoptimizeFrame implements spec.md §4.4's "Deoptimization": before
// exposing f to user code, walk its cells and mark any still-unforced
// eager promise as non-eager.
func deoptimizeFrame(f *rframe.Frame) {
	if f == nil {
		return
	}
	for slot := range f.Desc.Slots {
		v, err := f.Read(slot)
		if err != nil || v == nil {
			continue
		}
		holder, ok := v.(PromiseHolder)
		if !ok {
			continue
		}
		p := holder.Promise()
		if p != nil && !rpromise.IsForced(p) && p.Eager {
			p.MarkNonEager()
		}
	}
}

// SysFrame implements sys.frame(which): the environment view of the
// numbered frame, deoptimizing its unforced promises per §4.4.
func SysFrame(c0 *rcaller.RCaller, which int, host Host) (*rframe.Frame, error) {
	depth, err := DecodeFrameNumber(c0, which)
	if err != nil {
		return nil, err
	}
	f := host.FrameAt(depth)
	if f == nil {
		return nil, rerrors.NewUserError(rerrors.CodeNotThatManyFrames, "not that many frames on the stack")
	}
	deoptimizeFrame(f)
	return f, nil
}

// SysFrames implements sys.frames(): environment views from depth 1 up
// to c0.Depth-1, each deoptimized as SysFrame would.
func SysFrames(c0 *rcaller.RCaller, host Host) []*rframe.Frame {
	var out []*rframe.Frame
	for d := 1; d <= c0.Depth-1; d++ {
		f := host.FrameAt(d)
		if f == nil {
			continue
		}
		deoptimizeFrame(f)
		out = append(out, f)
	}
	return out
}

// SysNframe implements sys.nframe(): the depth of unwrap(c0.previous).
func SysNframe(c0 *rcaller.RCaller) int {
	prev := rcaller.UnwrapPrevious(c0)
	if prev == nil {
		return 0
	}
	return prev.Depth
}

// SysParent implements sys.parent(n) by delegating to rcaller's walk.
func SysParent(c0 *rcaller.RCaller, n int) int {
	return rcaller.WalkParents(c0, n)
}

// SysParents implements sys.parents() by delegating to rcaller's walk.
func SysParents(c0 *rcaller.RCaller) []int {
	return rcaller.Parents(c0)
}

// SysFunction implements sys.function(which): the function value bound
// to the numbered frame, or rvalue.Null if absent.
func SysFunction(c0 *rcaller.RCaller, which int, host Host) (rvalue.Value, error) {
	depth, err := DecodeFrameNumber(c0, which)
	if err != nil {
		return nil, err
	}
	fn := host.FunctionAt(depth)
	if fn == nil {
		return rvalue.Null, nil
	}
	return fn, nil
}

// ParentFrame implements parent.frame(n): like SysParent but returns the
// resolved activation's environment. spec.md §4.5 notes an optimization
// for the common case originalCall.depth == resolved.depth+1 that reuses
// a cached caller-frame pointer; that cache is the host's concern (it
// owns the activation-to-frame association), so this module always
// resolves through Host.FrameAt and lets the host serve it from whatever
// cache it keeps.
func ParentFrame(c0 *rcaller.RCaller, n int, host Host) (*rframe.Frame, error) {
	depth := rcaller.WalkParents(c0, n)
	f := host.FrameAt(depth)
	if f == nil {
		return nil, rerrors.NewUserError(rerrors.CodeNotThatManyFrames, "not that many frames on the stack")
	}
	return f, nil
}

// RecallTarget implements the original_source supplement restoring
// Recall: it resolves to the function object of the current activation,
// the composition SysFunction(decode_frame_number(c0, 0)) the original
// documents Recall as performing. A host Recall builtin uses the
// returned syntax node to re-invoke that function against fresh
// arguments; this module does not perform the call itself (that is
// evaluator machinery, out of scope for C6).
func RecallTarget(c0 *rcaller.RCaller, host Host) (rast.SyntaxNode, error) {
	depth, err := DecodeFrameNumber(c0, 0)
	if err != nil {
		return nil, err
	}
	fnVal := host.FunctionAt(depth)
	fn, ok := fnVal.(FunctionValue)
	if !ok {
		return nil, rerrors.NewUserError(rerrors.CodeInvalidCall, "Recall called from outside a closure")
	}
	return fn.Node(), nil
}
