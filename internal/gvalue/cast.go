package gvalue

import (
	"math/big"

	"github.com/xelis-go/funxyvm/internal/gerrors"
)

// CastCell applies the coercion rules of spec.md §4.4 to a ValueCell,
// producing a new cell of the requested Type. This is the behavior
// behind the CAST opcode (spec.md §4.5).
func CastCell(cell ValueCell, target Type) (ValueCell, error) {
	switch target.Tag {
	case TOptional:
		if cell.IsNull() {
			return EmptyOptionalCell(), nil
		}
		if cell.Tag == CellOptional {
			return cell, nil
		}
		inner, err := CastCell(cell, *target.Inner)
		if err != nil {
			return ValueCell{}, err
		}
		return OptionalCell(NewSubValue(inner)), nil
	case TRange:
		if cell.Tag != CellDefault || cell.Prim.Tag != TRange {
			return ValueCell{}, gerrors.New(gerrors.CastError, "expected a Range value")
		}
		lo, hi, _ := cell.Prim.AsRange()
		newLo, err := castPrimitive(lo, target.Inner.Tag)
		if err != nil {
			return ValueCell{}, err
		}
		newHi, err := castPrimitive(hi, target.Inner.Tag)
		if err != nil {
			return ValueCell{}, err
		}
		return DefaultCell(RangeOf(newLo, newHi, *target.Inner)), nil
	default:
		if cell.Tag != CellDefault {
			return ValueCell{}, gerrors.New(gerrors.CastError, "cannot cast a composite value to %s", target.Tag)
		}
		p, err := castPrimitive(cell.Prim, target.Tag)
		if err != nil {
			return ValueCell{}, err
		}
		return DefaultCell(p), nil
	}
}

// castPrimitive implements the scalar half of spec.md §4.4:
//   - Integer widening U<N> -> U<M>, M >= N: always lossless, legal.
//   - Narrowing: lossless only if the runtime value fits; else CastError.
//   - bool -> Uk gives 0/1; Uk -> bool is a nonzero test.
func castPrimitive(p Primitive, tag TypeTag) (Primitive, error) {
	if p.Tag == tag {
		return p, nil
	}

	switch {
	case tag == TBool:
		switch {
		case p.Tag.IsInteger():
			return Bool(p.AsU64Wide() != 0), nil
		case p.Tag == TBool:
			return p, nil
		default:
			return Primitive{}, gerrors.New(gerrors.CastError, "cannot cast %s to Bool", p.Tag)
		}
	case tag.IsInteger():
		switch {
		case p.Tag == TBool:
			if p.AsBool() {
				return fromBig(big.NewInt(1), tag), nil
			}
			return fromBig(big.NewInt(0), tag), nil
		case p.Tag.IsInteger():
			v := p.Big()
			if !fitsWidth(v, tag) {
				return Primitive{}, gerrors.New(gerrors.CastError, "%s value %s does not fit in %s", p.Tag, v, tag)
			}
			return fromBig(v, tag), nil
		default:
			return Primitive{}, gerrors.New(gerrors.CastError, "cannot cast %s to %s", p.Tag, tag)
		}
	case tag == TString:
		return Str(p.String()), nil
	default:
		return Primitive{}, gerrors.New(gerrors.CastError, "unsupported cast target %s", tag)
	}
}

// AsU64Wide returns a value that is nonzero exactly when the integer
// primitive is nonzero: the payload itself for widths up to 64 bits,
// and 0 or 1 for U128/U256. Used by the bool-cast nonzero test.
func (p Primitive) AsU64Wide() uint64 {
	if p.Tag == TU128 || p.Tag == TU256 {
		if p.big.Sign() == 0 {
			return 0
		}
		return 1
	}
	return p.u64
}

