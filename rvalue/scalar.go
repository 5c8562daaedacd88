package rvalue

import "math"

// The real numeric/vector layer lives outside this module (spec.md §1).
// These scalar wrappers exist only so the environment core's own test
// suites can exercise real Values without depending on that collaborator.

type singleton struct {
	kind Kind
	name string
}

func (s *singleton) Kind() Kind         { return s.kind }
func (s *singleton) Share() ShareState  { return NonShared }
func (s *singleton) MarkShared()        {}
func (s *singleton) Equal(o Value) bool { return o == Value(s) }
func (s *singleton) Size() int64        { return 0 }

var (
	Null    Value = &singleton{kind: KindNull, name: "null"}
	Missing Value = &singleton{kind: KindMissing, name: "missing"}
	Unbound Value = &singleton{kind: KindUnbound, name: "unbound"}
)

// Boxed wraps a primitive Go value (bool, int64, float64, string) as an
// rvalue.Value, using bitwise equality for Double per this module's
// resolution of spec.md §9's Open Question.
type Boxed struct {
	kind  Kind
	share ShareState
	data  any
}

func NewBool(b bool) *Boxed    { return &Boxed{kind: KindLogical, share: Temporary, data: b} }
func NewInt(i int64) *Boxed    { return &Boxed{kind: KindInt, share: Temporary, data: i} }
func NewDouble(f float64) *Boxed { return &Boxed{kind: KindDouble, share: Temporary, data: f} }
func NewString(s string) *Boxed { return &Boxed{kind: KindString, share: Temporary, data: s} }

func (b *Boxed) Kind() Kind        { return b.kind }
func (b *Boxed) Share() ShareState { return b.share }
func (b *Boxed) MarkShared() {
	if b.share != Shared {
		b.share = Shared
	}
}

func (b *Boxed) Data() any { return b.data }

func (b *Boxed) Equal(other Value) bool {
	o, ok := other.(*Boxed)
	if !ok || o.kind != b.kind {
		return false
	}
	switch b.kind {
	case KindDouble:
		// Bitwise equality: NaN != NaN, -0.0 != +0.0. See Equal's doc
		// comment on the Value interface.
		return doubleBits(b.data.(float64)) == doubleBits(o.data.(float64))
	default:
		return b.data == o.data
	}
}

func (b *Boxed) Size() int64 {
	switch b.kind {
	case KindString:
		return int64(len(b.data.(string))) + 16
	default:
		return 8
	}
}

func doubleBits(f float64) uint64 {
	return math.Float64bits(f)
}
