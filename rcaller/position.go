package rcaller

import "fmt"

// SourcePosition implements rerrors.Caller: it renders this activation's
// syntax node position, walking up Previous (skipping promise-evaluation
// frames) until one with a real syntax node is found, matching spec.md
// §7's "Propagation policy" (user errors carry the best-available caller
// activation, located by walking up from the failing node to the
// nearest activation with a valid syntax node).
func (c *RCaller) SourcePosition() string {
	cur := UnwrapPromiseCaller(c)
	for cur != nil {
		if IsValid(cur) {
			path, line := cur.SyntaxNode.SourceSection()
			if path == "" {
				return fmt.Sprintf("line %d", line)
			}
			return fmt.Sprintf("%s:%d", path, line)
		}
		cur = UnwrapPromiseCaller(cur.Previous)
	}
	return ""
}

// NearestValidCaller walks up from c (via Previous, unwrapping
// promise-evaluation frames) to find the nearest activation with a real
// syntax node, per spec.md §7.
func NearestValidCaller(c *RCaller) *RCaller {
	cur := UnwrapPromiseCaller(c)
	for cur != nil {
		if IsValid(cur) {
			return cur
		}
		cur = UnwrapPromiseCaller(cur.Previous)
	}
	return nil
}
