package rintrospect

import (
	"github.com/LaudateCorpus1/fastr/rast"
	"github.com/LaudateCorpus1/fastr/rframe"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// ArgsHolder is the adapter a "..." binding's rvalue.Value implements so
// MatchCall can splice a caller's own variadic arguments into a call
// that passes "..." through.
type ArgsHolder interface {
	rvalue.Value
	CallArgs() []rast.CallArg
}

// pairlistDots is the synthesized syntax node match.call produces for a
// dots formal when expandDots is false (spec.md §4.5: "pairlist-wrap a
// variadic argument").
type pairlistDots struct {
	Args []rast.CallArg
}

func (pairlistDots) SourceSection() (string, int) { return "", 0 }

// PairlistArgs returns the wrapped arguments of a pairlist-wrapped dots
// node, or (nil, false) if n is not one.
func PairlistArgs(n rast.SyntaxNode) ([]rast.CallArg, bool) {
	p, ok := n.(pairlistDots)
	return p.Args, ok
}

const dotsName = "..."

// expandCallerDots replaces any "..." reference among args with the
// actual arguments bound to env's own "..." slot, per spec.md §4.5's
// "resolve each variadic position against the caller's variadic
// binding". A dots reference with no resolvable binding is dropped
// silently - match.call never errors on a missing splice.
func expandCallerDots(args []rast.CallArg, env *rframe.Frame) []rast.CallArg {
	out := make([]rast.CallArg, 0, len(args))
	for _, a := range args {
		if !rast.IsDotsRef(a.Value) {
			out = append(out, a)
			continue
		}
		if env == nil {
			continue
		}
		slot := env.Desc.NameToSlot(dotsName)
		if slot < 0 {
			continue
		}
		v, err := env.Read(slot)
		if err != nil || v == nil {
			continue
		}
		if holder, ok := v.(ArgsHolder); ok {
			out = append(out, holder.CallArgs()...)
		}
	}
	return out
}

// MatchCall implements spec.md §4.5's match.call(def, call, expand_dots,
// env): re-match call's arguments against def's formals, reordering
// named arguments into formal order and expanding or pairlist-wrapping
// the variadic slot.
//
// Name/position collisions are resolved in favour of names: every named
// argument claims its matching formal before any positional argument is
// placed, so a positional argument never takes a formal that a name
// already claimed and instead fills the next open formal. A named
// argument whose formal was already claimed by an earlier argument of
// the same name falls through to the leftover/dots pool, keeping its
// name on the CallArg. No collision is reported as an error.
func MatchCall(def *rast.Formals, call rast.CallNode, expandDots bool, env *rframe.Frame) (rast.CallNode, error) {
	args := expandCallerDots(call.Args(), env)

	n := len(def.List)
	filled := make([]*rast.CallArg, n)
	var leftover []rast.CallArg

	// Pass 1: named arguments claim their matching formal, when open.
	var positional []rast.CallArg
	for _, a := range args {
		if a.Name == "" {
			positional = append(positional, a)
			continue
		}
		idx := def.IndexOf(a.Name)
		if idx >= 0 && idx != def.DotsIndex && filled[idx] == nil {
			cp := a
			filled[idx] = &cp
			continue
		}
		leftover = append(leftover, a)
	}

	// Pass 2: positional arguments fill the next open formal before the
	// dots formal; formals after "..." are matched by name only.
	limit := n
	if def.HasDots() {
		limit = def.DotsIndex
	}
	nextOpen := 0
	for _, a := range positional {
		for nextOpen < limit && (nextOpen == def.DotsIndex || filled[nextOpen] != nil) {
			nextOpen++
		}
		if nextOpen >= limit {
			leftover = append(leftover, a)
			continue
		}
		cp := a
		filled[nextOpen] = &cp
		nextOpen++
	}

	result := make([]rast.CallArg, 0, n+len(leftover))
	for i, formal := range def.List {
		if i == def.DotsIndex {
			if expandDots {
				result = append(result, leftover...)
			} else {
				result = append(result, rast.CallArg{Name: dotsName, Value: pairlistDots{Args: leftover}})
			}
			continue
		}
		if filled[i] != nil {
			// Fill in the formal's name even when the original argument
			// at the call site was positional, per spec.md §4.5's
			// "with all names filled in".
			result = append(result, rast.CallArg{Name: formal.Name, Value: filled[i].Value})
		}
	}
	if !def.HasDots() {
		result = append(result, leftover...)
	}

	return call.WithArgs(result), nil
}
