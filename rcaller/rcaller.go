// Package rcaller implements the caller-chain model (C2 in the
// environment-core design, spec.md §3 and §4.3): an immutable record of
// a single call activation, the distinction between its lexical parent,
// its dynamic previous activation, and promise-evaluation frames, and
// the unwrap rules stack introspection needs.
//
// Grounded on the original FastR RCaller, as referenced from
// Rprof.java's stack walk (RCaller.unwrapPromiseCaller,
// RCaller.isValidCaller, RCaller.getSyntaxNode) in
// _examples/original_source.
package rcaller

import (
	"fmt"

	"github.com/LaudateCorpus1/fastr/rast"
	"github.com/LaudateCorpus1/fastr/rerrors"
)

// PayloadKind tags what Payload means on an RCaller, per spec.md §3.
type PayloadKind int

const (
	// Regular is an ordinary function-call activation.
	Regular PayloadKind = iota
	// PromiseEvaluation marks an activation installed while forcing a
	// promise; Payload is the promise's logical caller. Transparent to
	// most introspection: unwrap recursively follows Payload.
	PromiseEvaluation
	// NonFunctionParent marks an activation whose "parent" for
	// sys.parent purposes is a plain environment rather than another
	// activation; Payload is that environment (typed as `any` here -
	// the environment package depends on rcaller, not the reverse).
	NonFunctionParent
	// Irregular marks activations constructed outside the normal
	// call-evaluation path (e.g. eval() in an arbitrary environment).
	Irregular
)

func (k PayloadKind) String() string {
	switch k {
	case Regular:
		return "regular"
	case PromiseEvaluation:
		return "promise-evaluation"
	case NonFunctionParent:
		return "non-function-parent"
	case Irregular:
		return "irregular"
	default:
		return "unknown"
	}
}

// RCaller is the immutable call-activation record of spec.md §3.
type RCaller struct {
	Depth       int
	Parent      *RCaller
	Previous    *RCaller
	SyntaxNode  rast.SyntaxNode
	PayloadKind PayloadKind
	Payload     any
}

// global is the singleton depth-0 activation every chain terminates at.
var global = &RCaller{
	Depth:       0,
	Parent:      nil,
	Previous:    nil,
	SyntaxNode:  rast.NoSyntaxNode,
	PayloadKind: Regular,
}

// Global returns the shared global-environment activation.
func Global() *RCaller { return global }

// New constructs a non-global activation, enforcing the invariants of
// spec.md §8: previous must be non-nil, and depth must satisfy
// previous.Depth <= depth <= previous.Depth+1, with equality to
// previous.Depth exactly when this activation is non-function or a
// promise-evaluation frame (captured by the isFunctionFrame argument).
func New(depth int, parent, previous *RCaller, syntaxNode rast.SyntaxNode, kind PayloadKind, payload any, isFunctionFrame bool) *RCaller {
	if previous == nil {
		panic(rerrors.NewInvariantError(rerrors.CodeInvalidCall, "non-global RCaller must have a non-nil Previous"))
	}
	if depth < previous.Depth || depth > previous.Depth+1 {
		panic(rerrors.NewInvariantError(rerrors.CodeInvalidCall,
			"depth monotonicity violated: depth=%d previous.Depth=%d", depth, previous.Depth))
	}
	sameDepthRequired := kind == PromiseEvaluation || !isFunctionFrame
	if sameDepthRequired && depth != previous.Depth {
		panic(rerrors.NewInvariantError(rerrors.CodeInvalidCall,
			"non-function/promise-evaluation activation must share its previous activation's depth"))
	}
	if !sameDepthRequired && depth != previous.Depth+1 {
		panic(rerrors.NewInvariantError(rerrors.CodeInvalidCall,
			"function activation must be one deeper than its previous activation"))
	}
	if syntaxNode == nil {
		syntaxNode = rast.NoSyntaxNode
	}
	return &RCaller{
		Depth:       depth,
		Parent:      parent,
		Previous:    previous,
		SyntaxNode:  syntaxNode,
		PayloadKind: kind,
		Payload:     payload,
	}
}

// IsValid reports whether c is "valid" for introspection per spec.md
// §4.3: it has a real syntax node. Promise records are never valid in
// their own right - callers must unwrap first.
func IsValid(c *RCaller) bool {
	if c == nil {
		return false
	}
	return rast.HasSyntaxNode(c.SyntaxNode)
}

// UnwrapPromiseCaller follows c.Payload while c.PayloadKind is
// PromiseEvaluation, stopping at the first non-promise-evaluation
// activation. A no-op (returns c unchanged) when c is already regular,
// making repeated application idempotent (spec.md §8, "Unwrap
// idempotence").
func UnwrapPromiseCaller(c *RCaller) *RCaller {
	for c != nil && c.PayloadKind == PromiseEvaluation {
		next, ok := c.Payload.(*RCaller)
		if !ok || next == nil {
			return c
		}
		c = next
	}
	return c
}

// UnwrapSysParent returns the captured environment when c is a
// NonFunctionParent activation, or nil otherwise. The environment is
// returned as `any` (concretely a *rframe.Frame or equivalent, owned by
// a higher-level package) to avoid an import cycle.
func UnwrapSysParent(c *RCaller) any {
	if c == nil || c.PayloadKind != NonFunctionParent {
		return nil
	}
	return c.Payload
}

// UnwrapPrevious walks c.Previous, skipping over promise-evaluation
// records encountered along the way, and returns the first activation
// that is not itself a promise-evaluation record.
func UnwrapPrevious(c *RCaller) *RCaller {
	if c == nil {
		return nil
	}
	return UnwrapPromiseCaller(c.Previous)
}

// String renders a short debug form, e.g. "RCaller{depth=2 kind=regular}".
func (c *RCaller) String() string {
	if c == nil {
		return "RCaller{nil}"
	}
	return fmt.Sprintf("RCaller{depth=%d kind=%s}", c.Depth, c.PayloadKind)
}
