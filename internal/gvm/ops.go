package gvm

import (
	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/genv"
	"github.com/xelis-go/funxyvm/internal/gerrors"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

func arithOpFor(op Opcode) gvalue.ArithOp {
	switch op {
	case OP_ADD:
		return gvalue.OpAdd
	case OP_SUB:
		return gvalue.OpSub
	case OP_MUL:
		return gvalue.OpMul
	case OP_DIV:
		return gvalue.OpDiv
	case OP_MOD:
		return gvalue.OpMod
	default:
		return gvalue.OpPow
	}
}

func bitwiseOpFor(op Opcode) gvalue.BitwiseOp {
	switch op {
	case OP_AND:
		return gvalue.OpAnd
	case OP_OR:
		return gvalue.OpOr
	default:
		return gvalue.OpXor
	}
}

// truthy implements the condition test used by JUMP_IF_FALSE and its
// keep variant: a Bool primitive's value, false for Null, true
// otherwise (matching the compiler's single Bool-producing comparison
// and logic opcodes, spec.md §4.5).
func truthy(cell *gvalue.ValueCell) bool {
	if cell.Tag != gvalue.CellDefault {
		return true
	}
	switch cell.Prim.Tag {
	case gvalue.TBool:
		return cell.Prim.AsBool()
	case gvalue.TNull:
		return false
	default:
		return true
	}
}

func (vm *VM) binaryArith(fr *frame, op gvalue.ArithOp) error {
	b, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	a, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	result, err := gvalue.CheckedArith(op, a.AsRef().Prim, b.AsRef().Prim)
	if err != nil {
		return err
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(result)))
}

func (vm *VM) binaryBitwise(fr *frame, op gvalue.BitwiseOp) error {
	b, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	a, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	result, err := gvalue.CheckedBitwise(op, a.AsRef().Prim, b.AsRef().Prim)
	if err != nil {
		return err
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(result)))
}

func (vm *VM) binaryShift(fr *frame, left bool) error {
	shift, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	a, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	result, err := gvalue.CheckedShift(left, a.AsRef().Prim, shift.AsRef().Prim)
	if err != nil {
		return err
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(result)))
}

func (vm *VM) unaryNeg(fr *frame) error {
	a, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	result, err := gvalue.Neg(a.AsRef().Prim)
	if err != nil {
		return err
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(result)))
}

func (vm *VM) unaryNot(fr *frame) error {
	a, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	cell := a.AsRef()
	if cell.Tag != gvalue.CellDefault || cell.Prim.Tag != gvalue.TBool {
		return gerrors.New(gerrors.TypeMismatch, "NOT requires a Bool operand")
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(gvalue.Bool(!cell.Prim.AsBool()))))
}

func (vm *VM) binaryEquality(fr *frame, wantEqual bool) error {
	b, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	a, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	eq := gvalue.EqualCells(a.AsRef(), b.AsRef())
	if !wantEqual {
		eq = !eq
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(gvalue.Bool(eq))))
}

func (vm *VM) binaryOrdering(fr *frame, op Opcode) error {
	b, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	a, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	cmp, err := gvalue.Compare(a.AsRef().Prim, b.AsRef().Prim)
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case OP_LT:
		result = cmp < 0
	case OP_LE:
		result = cmp <= 0
	case OP_GT:
		result = cmp > 0
	case OP_GE:
		result = cmp >= 0
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(gvalue.Bool(result))))
}

func (vm *VM) castTop(fr *frame, tag gvalue.TypeTag) error {
	top, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	target := gvalue.Simple(tag)
	result, err := gvalue.CastCell(top.IntoOwned(), target)
	if err != nil {
		return err
	}
	return fr.stack.Push(gvalue.NewOwned(result))
}

func (vm *VM) newArray(fr *frame, n int) error {
	popped, err := fr.stack.PopN(n)
	if err != nil {
		return err
	}
	elems := make([]gvalue.SubValue, n)
	for i, p := range popped {
		elems[i] = gvalue.NewSubValue(p.IntoOwned())
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.ArrayCell(elems)))
}

func (vm *VM) newStruct(fr *frame, typeID uint32, n int) error {
	popped, err := fr.stack.PopN(n)
	if err != nil {
		return err
	}
	elems := make([]gvalue.SubValue, n)
	for i, p := range popped {
		elems[i] = gvalue.NewSubValue(p.IntoOwned())
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.StructCell(elems, typeID)))
}

func (vm *VM) newEnum(fr *frame, typeID uint32, variant uint8, n int) error {
	popped, err := fr.stack.PopN(n)
	if err != nil {
		return err
	}
	elems := make([]gvalue.SubValue, n)
	for i, p := range popped {
		elems[i] = gvalue.NewSubValue(p.IntoOwned())
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.EnumCell(elems, typeID, variant)))
}

func (vm *VM) newMap(fr *frame, n int) error {
	popped, err := fr.stack.PopN(2 * n)
	if err != nil {
		return err
	}
	m := gvalue.NewMapCell()
	for i := 0; i < n; i++ {
		key := popped[2*i].IntoOwned()
		val := popped[2*i+1].IntoOwned()
		m.Put(key, gvalue.NewSubValue(val))
	}
	return fr.stack.Push(gvalue.NewOwned(gvalue.MapCellOf(m)))
}

func (vm *VM) newRange(fr *frame) error {
	hi, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	lo, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	loPrim := lo.AsRef().Prim
	hiPrim := hi.AsRef().Prim
	if loPrim.Tag != hiPrim.Tag || !loPrim.Tag.IsInteger() {
		return gerrors.New(gerrors.TypeMismatch, "range bounds must be the same integer type")
	}
	rng := gvalue.RangeOf(loPrim, hiPrim, gvalue.Simple(loPrim.Tag))
	return fr.stack.Push(gvalue.NewOwned(gvalue.DefaultCell(rng)))
}

func (vm *VM) iterNew(fr *frame) error {
	top, err := fr.stack.Pop()
	if err != nil {
		return err
	}
	cell := top.IntoOwned()
	switch {
	case cell.Tag == gvalue.CellArray:
		fr.manager.PushIterator(gvalue.NewArrayIterator(cell.Elems))
		return nil
	case cell.Tag == gvalue.CellMap:
		fr.manager.PushIterator(gvalue.NewMapKeyIterator(cell.Map))
		return nil
	case cell.Tag == gvalue.CellDefault && cell.Prim.Tag == gvalue.TRange:
		lo, hi, elem := cell.Prim.AsRange()
		fr.manager.PushIterator(gvalue.NewRangeIterator(lo, hi, elem))
		return nil
	default:
		return gerrors.New(gerrors.TypeMismatch, "value is not iterable")
	}
}

func (vm *VM) iterNext(fr *frame, jumpOnEnd int) error {
	it, err := fr.manager.PeekIterator()
	if err != nil {
		return err
	}
	next, ok := it.Next()
	if !ok {
		fr.manager.Reader.SetPC(jumpOnEnd)
		return nil
	}
	return fr.stack.Push(next)
}

func (vm *VM) syscall(ctx *gcontext.Context, fr *frame) error {
	r := fr.manager.Reader
	id, err := r.ReadU16()
	if err != nil {
		return err
	}
	onValue, err := r.ReadBool()
	if err != nil {
		return err
	}
	argc, err := r.ReadU8()
	if err != nil {
		return err
	}

	entry, err := vm.Env.Function(id)
	if err != nil {
		return err
	}

	args, err := fr.stack.PopN(int(argc))
	if err != nil {
		return err
	}
	var receiver *gvalue.Path
	if onValue {
		rv, err := fr.stack.Pop()
		if err != nil {
			return err
		}
		receiver = &rv
	}

	if err := ctx.Charge(entry.GasCost); err != nil {
		return err
	}

	deque := genv.NewDeque(args)
	result, err := entry.Handler(receiver, deque, ctx)
	if err != nil {
		return gerrors.Native(err)
	}
	if result != nil {
		return fr.stack.Push(gvalue.NewOwned(*result))
	}
	return nil
}
