package gvalue

import (
	"fmt"
	"math/big"
)

// Primitive is the tagged leaf value of spec.md §3. Integer variants are
// distinct types; no implicit widening happens at this level. U128/U256
// are backed by math/big.Int the way the teacher's vm_exec.go reaches
// for math/big on its BigInt slow path.
type Primitive struct {
	Tag  TypeTag
	u64  uint64   // U8/U16/U32/U64 payload, and Bool as 0/1
	big  *big.Int // U128/U256 payload
	str  string   // String payload
	rng  *rangeVal
	opq  *Opaque
}

type rangeVal struct {
	Lo, Hi Primitive
	Elem   Type
}

// Opaque is an externally supplied value, identified by a stable id
// whose operations are provided entirely by native functions (spec.md
// Glossary).
type Opaque struct {
	TypeID  uint32
	Payload any
}

func Null() Primitive                  { return Primitive{Tag: TNull} }
func Bool(v bool) Primitive {
	var n uint64
	if v {
		n = 1
	}
	return Primitive{Tag: TBool, u64: n}
}
func U8(v uint8) Primitive   { return Primitive{Tag: TU8, u64: uint64(v)} }
func U16(v uint16) Primitive { return Primitive{Tag: TU16, u64: uint64(v)} }
func U32(v uint32) Primitive { return Primitive{Tag: TU32, u64: uint64(v)} }
func U64(v uint64) Primitive { return Primitive{Tag: TU64, u64: v} }

func U128(v *big.Int) Primitive { return Primitive{Tag: TU128, big: new(big.Int).Set(v)} }
func U256(v *big.Int) Primitive { return Primitive{Tag: TU256, big: new(big.Int).Set(v)} }

func Str(v string) Primitive { return Primitive{Tag: TString, str: v} }

func RangeOf(lo, hi Primitive, elem Type) Primitive {
	return Primitive{Tag: TRange, rng: &rangeVal{Lo: lo, Hi: hi, Elem: elem}}
}

func OpaqueOf(typeID uint32, payload any) Primitive {
	return Primitive{Tag: TOpaque, opq: &Opaque{TypeID: typeID, Payload: payload}}
}

func (p Primitive) IsNull() bool { return p.Tag == TNull }

func (p Primitive) AsBool() bool { return p.u64 != 0 }

// AsU64 returns the 64-bit-or-smaller payload regardless of exact tag;
// callers must have already checked p.Tag.IsInteger() and width.
func (p Primitive) AsU64() uint64 { return p.u64 }

func (p Primitive) AsBig() *big.Int {
	if p.big != nil {
		return p.big
	}
	return new(big.Int).SetUint64(p.u64)
}

func (p Primitive) AsString() string { return p.str }

func (p Primitive) AsRange() (lo, hi Primitive, elem Type) {
	if p.rng == nil {
		return Primitive{}, Primitive{}, Type{}
	}
	return p.rng.Lo, p.rng.Hi, p.rng.Elem
}

func (p Primitive) AsOpaque() *Opaque { return p.opq }

// Big returns the value widened to *big.Int regardless of width,
// for uniform checked-arithmetic code paths.
func (p Primitive) Big() *big.Int {
	switch p.Tag {
	case TU128, TU256:
		return new(big.Int).Set(p.big)
	default:
		return new(big.Int).SetUint64(p.u64)
	}
}

func (p Primitive) Type() Type {
	switch p.Tag {
	case TRange:
		return Type{Tag: TRange, Inner: &p.rng.Elem}
	case TOpaque:
		return Type{Tag: TOpaque, Opaque: p.opq.TypeID}
	default:
		return Simple(p.Tag)
	}
}

// String renders the canonical decimal/bool/null form used by string
// concatenation (spec.md §4.4).
func (p Primitive) String() string {
	switch p.Tag {
	case TNull:
		return "null"
	case TBool:
		if p.AsBool() {
			return "true"
		}
		return "false"
	case TU8, TU16, TU32, TU64:
		return fmt.Sprintf("%d", p.u64)
	case TU128, TU256:
		return p.big.String()
	case TString:
		return p.str
	case TRange:
		lo, hi, _ := p.AsRange()
		return fmt.Sprintf("%s..%s", lo.String(), hi.String())
	case TOpaque:
		return fmt.Sprintf("<opaque #%d>", p.opq.TypeID)
	default:
		return "<?>"
	}
}

// Equals is value equality between two primitives of the same tag; per
// spec.md integer variants are distinct types, so U8(1) != U16(1).
func (p Primitive) Equals(o Primitive) bool {
	if p.Tag != o.Tag {
		return false
	}
	switch p.Tag {
	case TNull:
		return true
	case TBool, TU8, TU16, TU32, TU64:
		return p.u64 == o.u64
	case TU128, TU256:
		return p.big.Cmp(o.big) == 0
	case TString:
		return p.str == o.str
	case TRange:
		lo1, hi1, _ := p.AsRange()
		lo2, hi2, _ := o.AsRange()
		return lo1.Equals(lo2) && hi1.Equals(hi2)
	case TOpaque:
		return p.opq == o.opq
	default:
		return false
	}
}
