package gvalue

import "github.com/xelis-go/funxyvm/internal/gerrors"

// PathKind tags which of the three forms a Path currently holds
// (spec.md §3).
type PathKind uint8

const (
	PathOwned PathKind = iota
	PathBorrowed
	PathWrapper
)

// Path is the sole abstraction through which running code reads,
// writes, or descends into values (spec.md §3). Grounded line-for-line
// on xelis-vm's types/src/values/cell/path/mod.rs.
type Path struct {
	kind     PathKind
	owned    ValueCell
	borrowed *ValueCell // constant pool entry; never mutated in place
	wrapper  ValuePointer
}

func NewOwned(cell ValueCell) Path { return Path{kind: PathOwned, owned: cell} }

// NewBorrowed wraps a constant-pool cell. The caller guarantees the
// pointer outlives the Path (constant pools are immutable module data).
func NewBorrowed(cell *ValueCell) Path { return Path{kind: PathBorrowed, borrowed: cell} }

func NewWrapper(ptr ValuePointer) Path { return Path{kind: PathWrapper, wrapper: ptr} }

// AsRef returns a read-only view of the current cell.
func (p *Path) AsRef() *ValueCell {
	switch p.kind {
	case PathOwned:
		return &p.owned
	case PathBorrowed:
		return p.borrowed
	default:
		return p.wrapper.Read()
	}
}

// AsMut returns a mutable view, upgrading Borrowed to Owned by cloning
// first (copy-on-write for constants, spec.md §9).
func (p *Path) AsMut() *ValueCell {
	switch p.kind {
	case PathOwned:
		return &p.owned
	case PathBorrowed:
		p.owned = p.borrowed.Clone()
		p.kind = PathOwned
		p.borrowed = nil
		return &p.owned
	default:
		return p.wrapper.Write()
	}
}

// Shareable upgrades the path in place to a Wrapper and returns a second
// Wrapper over the same shared cell — used when the language aliases a
// value (e.g. inserting into a map, spec.md §3).
func (p *Path) Shareable() Path {
	switch p.kind {
	case PathOwned:
		sv := NewSubValue(p.owned)
		shared := SharedPointer(sv)
		p.kind = PathWrapper
		p.wrapper = shared
		p.owned = ValueCell{}
		return NewWrapper(shared.Clone())
	case PathBorrowed:
		sv := NewSubValue(p.borrowed.Clone())
		shared := SharedPointer(sv)
		p.kind = PathWrapper
		p.wrapper = shared
		p.borrowed = nil
		return NewWrapper(shared.Clone())
	default:
		return NewWrapper(p.wrapper.Clone())
	}
}

// GetSubVariable descends into index i of an Array/Struct/Enum cell.
//   - Owned: the container is about to be discarded by the caller (it
//     was popped off the operand stack), so the element is handed back
//     wrapped without a defensive copy — ownership effectively transfers.
//   - Borrowed: a deep copy of the element is returned as Owned.
//   - Wrapper: a Wrapper over the element slot is returned, preserving
//     aliasing with the original container.
func (p Path) GetSubVariable(index int) (Path, error) {
	switch p.kind {
	case PathOwned:
		elems, ok := p.owned.SubVec()
		if !ok {
			return Path{}, gerrors.New(gerrors.TypeMismatch, "value is not indexable")
		}
		if index < 0 || index >= len(elems) {
			return Path{}, gerrors.OutOfBoundsErr(index, len(elems))
		}
		at := elems[index]
		return NewWrapper(SharedPointer(at)), nil
	case PathBorrowed:
		elems, ok := p.borrowed.SubVec()
		if !ok {
			return Path{}, gerrors.New(gerrors.TypeMismatch, "value is not indexable")
		}
		if index < 0 || index >= len(elems) {
			return Path{}, gerrors.OutOfBoundsErr(index, len(elems))
		}
		return NewOwned(elems[index].Get().Clone()), nil
	default:
		cell := p.wrapper.Write()
		elems, ok := cell.SubVec()
		if !ok {
			return Path{}, gerrors.New(gerrors.TypeMismatch, "value is not indexable")
		}
		if index < 0 || index >= len(elems) {
			return Path{}, gerrors.OutOfBoundsErr(index, len(elems))
		}
		return NewWrapper(SharedPointer(elems[index])), nil
	}
}

// IntoOwned materializes a standalone ValueCell, cloning if necessary.
func (p Path) IntoOwned() ValueCell {
	switch p.kind {
	case PathOwned:
		return p.owned
	case PathBorrowed:
		return p.borrowed.Clone()
	default:
		return p.wrapper.IntoOwned()
	}
}

// IntoPointer converts the path into a ValuePointer, used by MEM_SET to
// store a register's contents.
func (p Path) IntoPointer() ValuePointer {
	switch p.kind {
	case PathOwned:
		return OwnedPointer(p.owned)
	case PathBorrowed:
		return OwnedPointer(p.borrowed.Clone())
	default:
		return p.wrapper
	}
}

// Weak returns a Path wrapping a weak view of this path's backing cell,
// used by MEM_LOAD to push a register alias onto the operand stack
// without transferring ownership.
func (p *Path) Weak() Path {
	switch p.kind {
	case PathWrapper:
		return NewWrapper(p.wrapper.Weak())
	default:
		// Owned/Borrowed registers are promoted to shared on first weak
		// read so subsequent writes through either handle are visible.
		shared := p.Shareable()
		return NewWrapper(shared.wrapper.Weak())
	}
}

// Clone duplicates the Path: Wrapper paths share the backing cell
// (clone-as-shared), Owned paths are deep-copied, and Borrowed paths
// keep pointing at the same immutable constant.
func (p Path) Clone() Path {
	switch p.kind {
	case PathOwned:
		return NewOwned(p.owned.Clone())
	case PathBorrowed:
		return NewBorrowed(p.borrowed)
	default:
		return NewWrapper(p.wrapper.Clone())
	}
}

func (p Path) Kind() PathKind { return p.kind }

// IsSamePointer reports whether two paths observe the same backing
// cell (spec.md §8's Shareable invariant is normally checked this way
// in tests).
func (p *Path) IsSamePointer(o *Path) bool {
	return p.AsRef() == o.AsRef()
}
