package rframe

import (
	"fmt"

	"github.com/LaudateCorpus1/fastr/assume"
	"github.com/LaudateCorpus1/fastr/rcaller"
	"github.com/LaudateCorpus1/fastr/rerrors"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// MultiSlotData is a slot promoted to multi-context storage (spec.md
// §5): a map keyed by context id. The initial context is
// always index 0, and promotion preserves its value.
type MultiSlotData struct {
	perContext map[int]rvalue.Value
}

func newMultiSlotData(initial rvalue.Value) *MultiSlotData {
	m := &MultiSlotData{perContext: make(map[int]rvalue.Value)}
	m.perContext[0] = initial
	return m
}

// Get returns the value for ctxID, or (nil, false) if none was ever set.
func (m *MultiSlotData) Get(ctxID int) (rvalue.Value, bool) {
	v, ok := m.perContext[ctxID]
	return v, ok
}

// Set stores v for ctxID.
func (m *MultiSlotData) Set(ctxID int, v rvalue.Value) {
	m.perContext[ctxID] = v
}

// Release drops a context's entry. Called by Frame.ReleaseContext; see
// its doc comment for this module's resolution of spec.md §9's open
// question on MultiSlotData lifetime.
func (m *MultiSlotData) Release(ctxID int) {
	delete(m.perContext, ctxID)
}

// Frame is an activation's slot array plus the header spec.md §3 calls
// for: the RCaller anchoring this activation, and whether the frame has
// been materialized into a user-held environment (the "irregular" flag
// that forces non_local_modified invalidation on every write, per
// spec.md §4.1 step 5).
type Frame struct {
	Desc      *FrameDescriptor
	Cells     []rvalue.Value
	Caller    *rcaller.RCaller
	Irregular bool
	// Singleton marks this frame as the one singleton owner of its FD
	// (spec.md §3/§4.2's "singleton frame"), set by renv.SetSingleton.
	// Stable-value recording is gated on this: a function FD shared
	// across activations must never populate info.StableValue from one
	// activation's write, or a later activation's lookup would read a
	// stale value left by a different call.
	Singleton  bool
	multiSlots map[int]*MultiSlotData
	// multiContext, when true, routes reads/writes for eligible slots
	// through multiSlots instead of Cells (spec.md §5). Set by
	// EnableMultiContext, called by a host that runs multiple logical
	// contexts on this interpreter thread.
	multiContext bool
	currentCtx   int
}

// NewFrame allocates a frame for desc, owned by caller.
func NewFrame(desc *FrameDescriptor, caller *rcaller.RCaller) *Frame {
	return &Frame{
		Desc:   desc,
		Cells:  make([]rvalue.Value, len(desc.Slots)),
		Caller: caller,
	}
}

// EnableMultiContext turns on multi-context slot routing for this frame.
// Context 0 is the initial context (spec.md §5: "the initial context is
// always index 0").
func (f *Frame) EnableMultiContext() {
	f.multiContext = true
	if f.multiSlots == nil {
		f.multiSlots = make(map[int]*MultiSlotData)
	}
}

// SetCurrentContext selects which logical context subsequent Read/Write
// calls address, when multi-context routing is enabled.
func (f *Frame) SetCurrentContext(ctxID int) { f.currentCtx = ctxID }

// ReleaseContext implements this module's resolution of spec.md §9's
// MultiSlotData lifetime question: a host calls this on context exit
// for every promoted slot it owns, rather than relying on any
// GC-driven cleanup this core has no hook for. A no-op if slot was
// never promoted.
func (f *Frame) ReleaseContext(slot, ctxID int) {
	if data, ok := f.multiSlots[slot]; ok {
		data.Release(ctxID)
	}
}

// WriteMode distinguishes the four write disciplines of spec.md §4.1.
type WriteMode int

const (
	// WriteLocal is an ordinary same-activation write.
	WriteLocal WriteMode = iota
	// WriteNonLocal is the "super-assign" write (<<-): it always
	// invalidates non_local_modified, per spec.md §4.1 step 5.
	WriteNonLocal
	// WriteForceAndSet materializes a forced promise into its slot.
	WriteForceAndSet
	// WriteMultiContext explicitly routes through the multi-slot path
	// even for a slot that isn't yet promoted, promoting it first.
	WriteMultiContext
)

// promoteToMultiSlot implements spec.md §5's promotion: invalidates
// NoMultiSlot, StableValue, and NonLocalModified, and seeds the new
// MultiSlotData with the slot's current (context-0) value.
func (f *Frame) promoteToMultiSlot(slot int) *MultiSlotData {
	info := f.Desc.Slots[slot]
	if f.multiSlots == nil {
		f.multiSlots = make(map[int]*MultiSlotData)
	}
	if existing, ok := f.multiSlots[slot]; ok {
		return existing
	}
	info.NoMultiSlot.Invalidate()
	if info.StableValue != nil {
		info.StableValue.Invalidate()
	}
	info.NonLocalModified.Invalidate()
	data := newMultiSlotData(f.Cells[slot])
	f.multiSlots[slot] = data
	return data
}

// eligibleForMultiSlot reports whether slot is already (or can become)
// a multi-slot, per spec.md §4.1 step 2.
func (f *Frame) eligibleForMultiSlot(slot int) bool {
	if _, ok := f.multiSlots[slot]; ok {
		return true
	}
	return f.Desc.Slots[slot].PossibleMultiSlot
}

// Write implements spec.md §4.1's write algorithm.
func (f *Frame) Write(slot int, v rvalue.Value, mode WriteMode) error {
	if slot < 0 || slot >= len(f.Cells) {
		return rerrors.NewUserError(rerrors.CodeInvalidArgument, "slot %d out of range", slot)
	}
	info := f.Desc.Slots[slot]

	// Step 2: multi-context routing.
	if (f.multiContext || mode == WriteMultiContext) && f.eligibleForMultiSlot(slot) {
		data := f.promoteToMultiSlot(slot)
		data.Set(f.currentCtx, v)
		return nil
	}

	// Step 3: type-specialized write on the cell. This module's Value
	// is an interface (the real specialization lives in the
	// out-of-scope vector layer), so the write is just a cell store.
	old := f.Cells[slot]
	f.Cells[slot] = v

	// Step 4: stable-value comparison and invalidation/recording.
	f.updateStableValue(slot, old, v)

	// Step 5: non-local or irregular-frame writes invalidate
	// non_local_modified.
	if mode == WriteNonLocal || f.Irregular {
		info.NonLocalModified.Invalidate()
	}
	return nil
}

// updateStableValue implements spec.md §4.1 step 4: compare by value
// (primitives) or identity (objects) - delegated to rvalue.Value.Equal,
// which this module's Open Question resolution makes bitwise for
// doubles. On mismatch, invalidate; if budget remains, record a new
// stable value; otherwise permanently clear it.
//
// Gated on f.Singleton: stable_value is present only for singleton-FD
// slots (spec.md §3). A function FD's slots are shared across every
// activation of that function, so recording a stable value from one
// activation's write would let an unrelated activation's lookup read a
// stale value left behind by a different call.
func (f *Frame) updateStableValue(slot int, old, updated rvalue.Value) {
	if !f.Singleton {
		return
	}
	info := f.Desc.Slots[slot]
	if info.StableValue == nil {
		if info.invalidationsExhausted() {
			return
		}
		info.StableValue = assume.NewCell[rvalue.Value](updated)
		return
	}
	cur, valid := info.StableValue.Get()
	if valid && cur != nil && cur.Equal(updated) {
		return
	}
	info.StableValue.Invalidate()
	info.invalCount++
	if info.invalidationsExhausted() {
		info.StableValue = nil
		return
	}
	info.StableValue = assume.NewCell[rvalue.Value](updated)
}

// Read implements spec.md §4.1's read algorithm: a direct cell read
// when the slot is not multi-context, otherwise the per-context value.
func (f *Frame) Read(slot int) (rvalue.Value, error) {
	if slot < 0 || slot >= len(f.Cells) {
		return nil, rerrors.NewUserError(rerrors.CodeInvalidArgument, "slot %d out of range", slot)
	}
	if data, ok := f.multiSlots[slot]; ok {
		v, found := data.Get(f.currentCtx)
		if !found {
			return rvalue.Unbound, nil
		}
		return v, nil
	}
	v := f.Cells[slot]
	if v == nil {
		return rvalue.Unbound, nil
	}
	return v, nil
}

// StableValue returns the slot's cached stable value and whether it is
// currently valid, per spec.md §3/§4.1.
func (f *Frame) StableValue(slot int) (rvalue.Value, bool) {
	if slot < 0 || slot >= len(f.Desc.Slots) {
		return nil, false
	}
	cell := f.Desc.Slots[slot].StableValue
	if cell == nil {
		return nil, false
	}
	return cell.Get()
}

// WriteActiveBinding installs an active-binding wrapper (spec.md §4.1:
// "Active bindings (callable getters) are stored as a tagged wrapper;
// writing one invalidates the FD-level 'no active binding'
// assumption"). noActiveBinding is the FD-level assumption, owned by
// renv's FDMetadata; passed in to avoid a dependency from rframe to
// renv.
func (f *Frame) WriteActiveBinding(slot int, getter any, noActiveBinding interface{ Invalidate() }) error {
	if slot < 0 || slot >= len(f.Desc.Slots) {
		return rerrors.NewUserError(rerrors.CodeInvalidArgument, "slot %d out of range", slot)
	}
	f.Desc.Slots[slot].ActiveBinding = getter
	noActiveBinding.Invalidate()
	return nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame{fd=%d slots=%d caller=%s}", f.Desc.ID, len(f.Cells), f.Caller)
}
