package gvalue

import "sync/atomic"

// cellRef is the heap-allocated, reference-counted interior-mutable
// storage backing a shared ValueCell. The refcount is kept for API
// fidelity with spec.md's "reference-counted ownership" description
// (xelis-vm backs this with Rc<RefCell<ValueCell>>); Go's GC is what
// actually reclaims the memory, so the count is advisory/introspectable
// rather than load-bearing.
type cellRef struct {
	cell  ValueCell
	count int32
}

// SubValue is a strong, shared, mutable handle to a ValueCell — the
// building block composite cells (Array/Struct/Enum/Map/Optional) use
// for their elements (spec.md §3).
type SubValue struct {
	ref *cellRef
}

// NewSubValue allocates a fresh shared cell with one strong reference.
func NewSubValue(cell ValueCell) SubValue {
	return SubValue{ref: &cellRef{cell: cell, count: 1}}
}

// Clone returns a second strong handle over the same cell, incrementing
// the advisory refcount (the "clone-as-shared" capability of spec.md §3).
func (s SubValue) Clone() SubValue {
	if s.ref != nil {
		atomic.AddInt32(&s.ref.count, 1)
	}
	return s
}

// Release decrements the advisory refcount. Never required for
// correctness (Go's GC owns the actual lifetime) but lets callers that
// want to model precise Rc semantics (tests, debugging) observe it.
func (s SubValue) Release() {
	if s.ref != nil {
		atomic.AddInt32(&s.ref.count, -1)
	}
}

func (s SubValue) RefCount() int32 {
	if s.ref == nil {
		return 0
	}
	return atomic.LoadInt32(&s.ref.count)
}

func (s SubValue) Get() *ValueCell {
	return &s.ref.cell
}

func (s SubValue) valid() bool { return s.ref != nil }

// ptrKind tags which of the three forms a ValuePointer currently holds.
type ptrKind uint8

const (
	ptrOwned ptrKind = iota
	ptrShared
	ptrWeak
)

// ValuePointer unifies the owned/shared/weak forms of spec.md §3 behind
// one polymorphic type with capability set {read, write-if-mut,
// clone-as-shared, upgrade-weak-to-strong}.
type ValuePointer struct {
	kind  ptrKind
	owned *ValueCell
	ref   *cellRef
}

// OwnedPointer wraps a sole-owner cell (never shared).
func OwnedPointer(cell ValueCell) ValuePointer {
	c := cell
	return ValuePointer{kind: ptrOwned, owned: &c}
}

// SharedPointer wraps a strong SubValue handle.
func SharedPointer(sv SubValue) ValuePointer {
	return ValuePointer{kind: ptrShared, ref: sv.ref}
}

// Weak returns a weak view over the same underlying cell: it observes
// but does not keep the cell alive on its own (spec.md §3) — used by
// MEM_LOAD, which pushes a weak alias of a register onto the operand
// stack (see Path.Weak).
func (p ValuePointer) Weak() ValuePointer {
	switch p.kind {
	case ptrShared, ptrWeak:
		return ValuePointer{kind: ptrWeak, ref: p.ref}
	default:
		// Owned values have no shared backing to weakly alias; promote
		// to shared first so a weak view is meaningful.
		sv := NewSubValue(*p.owned)
		return ValuePointer{kind: ptrWeak, ref: sv.ref}
	}
}

// UpgradeWeak turns a weak handle into a strong SubValue, the
// "upgrade-weak-to-strong" capability. Always succeeds under Go's GC
// (the cellRef cannot have been freed while still reachable); the bool
// return keeps the call site symmetric with the Rc<Weak> original where
// upgrade can fail after the strong count drops to zero.
func (p ValuePointer) UpgradeWeak() (SubValue, bool) {
	if p.kind != ptrWeak || p.ref == nil {
		return SubValue{}, false
	}
	atomic.AddInt32(&p.ref.count, 1)
	return SubValue{ref: p.ref}, true
}

// Clone implements clone-as-shared: owned values are promoted to a
// shared backing so the clone and the original observe each other,
// matching Path.shareable's contract.
func (p ValuePointer) Clone() ValuePointer {
	switch p.kind {
	case ptrOwned:
		sv := NewSubValue(*p.owned)
		*p.owned = ValueCell{} // the original owner's copy is now stale; callers use the returned shared pointer
		return ValuePointer{kind: ptrShared, ref: sv.ref}
	default:
		if p.ref != nil && p.kind == ptrShared {
			atomic.AddInt32(&p.ref.count, 1)
		}
		return ValuePointer{kind: p.kind, ref: p.ref}
	}
}

// Read returns a read handle to the underlying cell.
func (p *ValuePointer) Read() *ValueCell {
	switch p.kind {
	case ptrOwned:
		return p.owned
	default:
		return &p.ref.cell
	}
}

// Write returns a write-if-mut handle. Weak pointers may still be
// written through (they observe the same cell), so a write through a
// MEM_LOAD alias reaches the register's cell.
func (p *ValuePointer) Write() *ValueCell {
	return p.Read()
}

// IntoOwned returns a copy of the current cell value. The copy is
// shallow: a composite's elements are the same SubValue handles as in
// the source cell (used where an instruction or native needs the value
// rather than a Path, e.g. CAST, NEW_ARRAY, ITER_NEW).
func (p ValuePointer) IntoOwned() ValueCell {
	switch p.kind {
	case ptrOwned:
		return *p.owned
	default:
		return p.ref.cell
	}
}
