package gvalue

import (
	"math/big"

	"github.com/xelis-go/funxyvm/internal/gerrors"
)

// maxFor returns the inclusive upper bound of an unsigned integer tag.
func maxFor(tag TypeTag) *big.Int {
	bits := tag.BitWidth()
	max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return max.Sub(max, big.NewInt(1))
}

func fitsWidth(v *big.Int, tag TypeTag) bool {
	if v.Sign() < 0 {
		return false
	}
	return v.Cmp(maxFor(tag)) <= 0
}

func fromBig(v *big.Int, tag TypeTag) Primitive {
	switch tag {
	case TU8:
		return U8(uint8(v.Uint64()))
	case TU16:
		return U16(uint16(v.Uint64()))
	case TU32:
		return U32(uint32(v.Uint64()))
	case TU64:
		return U64(v.Uint64())
	case TU128, TU256:
		return Primitive{Tag: tag, big: new(big.Int).Set(v)}
	default:
		return Primitive{}
	}
}

// CheckedArith applies one arithmetic opcode to two same-tag integer
// primitives with full overflow/underflow/division checking (spec.md
// §4.4: "All arithmetic is checked... never silently wrapped").
func CheckedArith(op ArithOp, a, b Primitive) (Primitive, error) {
	if a.Tag != b.Tag || !a.Tag.IsInteger() {
		return Primitive{}, gerrors.New(gerrors.TypeMismatch, "arithmetic requires two integers of the same width")
	}
	tag := a.Tag
	x, y := a.Big(), b.Big()
	var result *big.Int

	switch op {
	case OpAdd:
		result = new(big.Int).Add(x, y)
	case OpSub:
		if x.Cmp(y) < 0 {
			return Primitive{}, gerrors.New(gerrors.Overflow, "underflow in %s subtraction", tag)
		}
		result = new(big.Int).Sub(x, y)
	case OpMul:
		result = new(big.Int).Mul(x, y)
	case OpDiv:
		if y.Sign() == 0 {
			return Primitive{}, gerrors.New(gerrors.DivisionByZero, "division by zero")
		}
		result = new(big.Int).Div(x, y)
	case OpMod:
		if y.Sign() == 0 {
			return Primitive{}, gerrors.New(gerrors.DivisionByZero, "modulus by zero")
		}
		result = new(big.Int).Mod(x, y)
	case OpPow:
		result = new(big.Int).Exp(x, y, nil)
	default:
		return Primitive{}, gerrors.New(gerrors.TypeMismatch, "not an arithmetic opcode")
	}

	if !fitsWidth(result, tag) {
		return Primitive{}, gerrors.New(gerrors.Overflow, "%s overflow", tag)
	}
	return fromBig(result, tag), nil
}

type ArithOp uint8

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
)

// Bitwise ops are defined only on integer types of identical width
// (spec.md §4.4).
func CheckedBitwise(op BitwiseOp, a, b Primitive) (Primitive, error) {
	if a.Tag != b.Tag || !a.Tag.IsInteger() {
		return Primitive{}, gerrors.New(gerrors.TypeMismatch, "bitwise ops require two integers of the same width")
	}
	tag := a.Tag
	x, y := a.Big(), b.Big()
	var result *big.Int
	switch op {
	case OpAnd:
		result = new(big.Int).And(x, y)
	case OpOr:
		result = new(big.Int).Or(x, y)
	case OpXor:
		result = new(big.Int).Xor(x, y)
	default:
		return Primitive{}, gerrors.New(gerrors.TypeMismatch, "not a bitwise opcode")
	}
	return fromBig(result, tag), nil
}

type BitwiseOp uint8

const (
	OpAnd BitwiseOp = iota
	OpOr
	OpXor
)

// CheckedShift applies SHL/SHR. A shift amount >= the operand width
// fails (spec.md §4.4).
func CheckedShift(left bool, a, shift Primitive) (Primitive, error) {
	if !a.Tag.IsInteger() || !shift.Tag.IsInteger() {
		return Primitive{}, gerrors.New(gerrors.TypeMismatch, "shift requires integer operands")
	}
	width := uint(a.Tag.BitWidth())
	amount := shift.Big()
	if amount.Sign() < 0 || amount.Cmp(big.NewInt(int64(width))) >= 0 {
		return Primitive{}, gerrors.New(gerrors.Overflow, "shift amount %s >= width %d", amount, width)
	}
	n := uint(amount.Uint64())
	x := a.Big()
	var result *big.Int
	if left {
		result = new(big.Int).Lsh(x, n)
		if !fitsWidth(result, a.Tag) {
			return Primitive{}, gerrors.New(gerrors.Overflow, "%s shift-left overflow", a.Tag)
		}
	} else {
		result = new(big.Int).Rsh(x, n)
	}
	return fromBig(result, a.Tag), nil
}

// Neg negates a value; only meaningful in this unsigned-only value
// model as an error (spec.md has no signed primitives), kept for
// completeness of the NEG opcode dispatch which rejects it cleanly.
func Neg(a Primitive) (Primitive, error) {
	return Primitive{}, gerrors.New(gerrors.TypeMismatch, "negation is not defined for unsigned %s", a.Tag)
}

// Compare orders two same-tag primitives for LT/LE/GT/GE; strings
// compare lexicographically, integers numerically.
func Compare(a, b Primitive) (int, error) {
	if a.Tag != b.Tag {
		return 0, gerrors.New(gerrors.TypeMismatch, "cannot compare %s with %s", a.Tag, b.Tag)
	}
	switch {
	case a.Tag.IsInteger():
		return a.Big().Cmp(b.Big()), nil
	case a.Tag == TString:
		switch {
		case a.str < b.str:
			return -1, nil
		case a.str > b.str:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, gerrors.New(gerrors.TypeMismatch, "%s is not ordered", a.Tag)
	}
}

// Concat implements string concatenation between String and any
// primitive (spec.md §4.4): the primitive renders in canonical decimal
// (integers), true/false (booleans), or the literal null.
func Concat(a, b Primitive) (Primitive, error) {
	switch {
	case a.Tag == TString:
		return Str(a.str + b.String()), nil
	case b.Tag == TString:
		return Str(a.String() + b.str), nil
	default:
		return Primitive{}, gerrors.New(gerrors.TypeMismatch, "concatenation requires at least one String operand")
	}
}
