package gvm

import (
	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/gerrors"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

type signalKind uint8

const (
	sigNone signalKind = iota
	sigInvoke
	sigReturn
)

// signal is the instruction-result the run loop in vm.go acts on:
// Nothing (default), InvokeChunk, or Return (spec.md §4.7). A CAST,
// ADD, JUMP, etc. mutate the current frame's stack/registers and leave
// sigNone; only RETURN and INVOKE_CHUNK reach outside dispatch into the
// frame stack. SYSCALL runs its native to completion inside dispatch
// and also leaves sigNone, since a native never pushes a VM frame.
type signal struct {
	kind signalKind

	invokeChunkID uint16
	invokeOnValue bool
	invokeArgc    int

	returnValue *gvalue.Path
}

// dispatch executes a single decoded opcode against the current frame.
// Grounded on the teacher's executeOneOp (internal/vm/vm_exec.go): one
// big switch, one case per opcode, each case reading its own
// immediates and mutating the stack directly.
func (vm *VM) dispatch(ctx *gcontext.Context, fr *frame, op Opcode) (signal, error) {
	r := fr.manager.Reader

	switch op {
	case OP_CONST:
		idx, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		cell, ok := vm.Module.Constant(idx)
		if !ok {
			return signal{}, gerrors.New(gerrors.ConstantNotFound, "no constant at index %d", idx)
		}
		return signal{}, fr.stack.Push(gvalue.NewBorrowed(&cell))

	case OP_MEM_LOAD:
		reg, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		p, err := fr.manager.GetRegister(reg)
		if err != nil {
			return signal{}, err
		}
		return signal{}, fr.stack.Push(p.Weak())

	case OP_MEM_SET:
		reg, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		v, err := fr.stack.Pop()
		if err != nil {
			return signal{}, err
		}
		return signal{}, fr.manager.SetRegister(reg, v)

	case OP_SUB_LOAD:
		idx, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		top, err := fr.stack.Pop()
		if err != nil {
			return signal{}, err
		}
		sub, err := top.GetSubVariable(int(int16(idx)))
		if err != nil {
			return signal{}, err
		}
		return signal{}, fr.stack.Push(sub)

	case OP_COPY:
		return signal{}, fr.stack.Dup()

	case OP_POP:
		_, err := fr.stack.Pop()
		return signal{}, err

	case OP_POP_N:
		n, err := r.ReadU8()
		if err != nil {
			return signal{}, err
		}
		_, err = fr.stack.PopN(int(n))
		return signal{}, err

	case OP_SWAP:
		i, err := r.ReadU8()
		if err != nil {
			return signal{}, err
		}
		return signal{}, fr.stack.Swap(int(i))

	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD, OP_POW:
		return signal{}, vm.binaryArith(fr, arithOpFor(op))

	case OP_NEG:
		return signal{}, vm.unaryNeg(fr)

	case OP_NOT:
		return signal{}, vm.unaryNot(fr)

	case OP_AND, OP_OR, OP_XOR:
		return signal{}, vm.binaryBitwise(fr, bitwiseOpFor(op))

	case OP_SHL, OP_SHR:
		return signal{}, vm.binaryShift(fr, op == OP_SHL)

	case OP_EQ, OP_NE:
		return signal{}, vm.binaryEquality(fr, op == OP_EQ)

	case OP_LT, OP_LE, OP_GT, OP_GE:
		return signal{}, vm.binaryOrdering(fr, op)

	case OP_JUMP:
		target, err := r.ReadJumpOffset()
		if err != nil {
			return signal{}, err
		}
		r.SetPC(target)
		return signal{}, nil

	case OP_JUMP_IF_FALSE:
		target, err := r.ReadJumpOffset()
		if err != nil {
			return signal{}, err
		}
		cond, err := fr.stack.Pop()
		if err != nil {
			return signal{}, err
		}
		if !truthy(cond.AsRef()) {
			r.SetPC(target)
		}
		return signal{}, nil

	case OP_JUMP_IF_FALSE_KEEP:
		target, err := r.ReadJumpOffset()
		if err != nil {
			return signal{}, err
		}
		cond, err := fr.stack.Peek(0)
		if err != nil {
			return signal{}, err
		}
		if !truthy(cond.AsRef()) {
			r.SetPC(target)
		}
		return signal{}, nil

	case OP_RETURN:
		if fr.stack.Len() == 0 {
			return signal{kind: sigReturn}, nil
		}
		v, err := fr.stack.Pop()
		if err != nil {
			return signal{}, err
		}
		return signal{kind: sigReturn, returnValue: &v}, nil

	case OP_INVOKE_CHUNK:
		id, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		onValue, err := r.ReadBool()
		if err != nil {
			return signal{}, err
		}
		argc, err := r.ReadU8()
		if err != nil {
			return signal{}, err
		}
		return signal{kind: sigInvoke, invokeChunkID: id, invokeOnValue: onValue, invokeArgc: int(argc)}, nil

	case OP_SYSCALL:
		return signal{}, vm.syscall(ctx, fr)

	case OP_NEW_ARRAY:
		n, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		return signal{}, vm.newArray(fr, int(n))

	case OP_NEW_STRUCT:
		typeID, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		n, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		return signal{}, vm.newStruct(fr, uint32(typeID), int(n))

	case OP_NEW_MAP:
		n, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		return signal{}, vm.newMap(fr, int(n))

	case OP_NEW_ENUM:
		typeID, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		variant, err := r.ReadU8()
		if err != nil {
			return signal{}, err
		}
		n, err := r.ReadU16()
		if err != nil {
			return signal{}, err
		}
		return signal{}, vm.newEnum(fr, uint32(typeID), variant, int(n))

	case OP_NEW_RANGE:
		return signal{}, vm.newRange(fr)

	case OP_ITER_NEW:
		return signal{}, vm.iterNew(fr)

	case OP_ITER_NEXT:
		target, err := r.ReadJumpOffset()
		if err != nil {
			return signal{}, err
		}
		return signal{}, vm.iterNext(fr, target)

	case OP_ITER_END:
		_, err := fr.manager.PopIterator()
		return signal{}, err

	case OP_CAST:
		tag, err := r.ReadU8()
		if err != nil {
			return signal{}, err
		}
		return signal{}, vm.castTop(fr, gvalue.TypeTag(tag))

	default:
		return signal{}, gerrors.New(gerrors.UnknownOpcode, "unhandled opcode %s", op)
	}
}
