package gvm

import (
	"github.com/xelis-go/funxyvm/internal/gchunk"
	"github.com/xelis-go/funxyvm/internal/gconfig"
	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/genv"
	"github.com/xelis-go/funxyvm/internal/gerrors"
	"github.com/xelis-go/funxyvm/internal/gmodule"
	"github.com/xelis-go/funxyvm/internal/gstack"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

// frame is one (ChunkManager, OperandStack) pair (spec.md §4.7).
type frame struct {
	chunkID uint16
	chunk   *gchunk.Chunk
	manager *gchunk.Manager
	stack   *gstack.Stack
}

// VM drives a single invocation at a time against one Module and one
// Environment. It holds no mutable state between Invoke calls other
// than those two immutable references, matching spec.md §5: "Modules
// are immutable and may be shared read-only across threads... its own
// Context" per run. Grounded on the teacher's VM struct shape
// (internal/vm/vm.go) narrowed to this spec's frame-stack-only model —
// the teacher's VM additionally owns globals, module loaders, and a
// debugger, none of which this execution-engine-only spec defines.
type VM struct {
	Module *gmodule.Module
	Env    *genv.Environment
	Limits gconfig.Limits
}

func New(mod *gmodule.Module, env *genv.Environment) *VM {
	return &VM{Module: mod, Env: env, Limits: gconfig.DefaultLimits()}
}

// NewWithLimits is New with host-overridden resource bounds (register
// file size, operand stack depth, call depth) applied to every frame
// an Invoke call pushes.
func NewWithLimits(mod *gmodule.Module, env *genv.Environment, limits gconfig.Limits) *VM {
	return &VM{Module: mod, Env: env, Limits: limits}
}

// Invoke runs chunkID to completion against args (spec.md §6:
// "invoke(module, env, chunk_id, args, context) -> Result<Value,
// Error>"). Returns the chunk's returned value, or nil if it returned
// none.
func (vm *VM) Invoke(ctx *gcontext.Context, chunkID uint16, args []gvalue.Path) (*gvalue.Path, error) {
	chunk, ok := vm.Module.Chunk(chunkID)
	if !ok {
		return nil, gerrors.New(gerrors.ConstantNotFound, "no chunk at id %d", chunkID)
	}
	ctx.SetMaxCallDepth(vm.Limits.MaxCallDepth)

	fr, err := vm.pushFrame(ctx, chunkID, chunk, args)
	if err != nil {
		return nil, err
	}

	frames := []*frame{fr}
	var finalResult *gvalue.Path

	for len(frames) > 0 {
		cur := frames[len(frames)-1]

		op, err := vm.decode(cur)
		if err != nil {
			return nil, err
		}
		if err := ctx.Charge(op.BaseCost()); err != nil {
			return nil, err
		}

		sig, err := vm.dispatch(ctx, cur, op)
		if err != nil {
			return nil, err
		}

		switch sig.kind {
		case sigNone:
			// continue

		case sigInvoke:
			calleeArgs, err := popCallArgs(cur.stack, sig.invokeArgc, sig.invokeOnValue)
			if err != nil {
				return nil, err
			}
			if err := ctx.EnterCall(); err != nil {
				return nil, err
			}
			calleeChunk, ok := vm.Module.Chunk(sig.invokeChunkID)
			if !ok {
				return nil, gerrors.New(gerrors.ConstantNotFound, "no chunk at id %d", sig.invokeChunkID)
			}
			callee, err := vm.pushFrame(ctx, sig.invokeChunkID, calleeChunk, calleeArgs)
			if err != nil {
				return nil, err
			}
			frames = append(frames, callee)

		case sigReturn:
			frames = frames[:len(frames)-1]
			ctx.ExitCall()
			if len(frames) == 0 {
				finalResult = sig.returnValue
				break
			}
			if sig.returnValue != nil {
				if err := frames[len(frames)-1].stack.Push(*sig.returnValue); err != nil {
					return nil, err
				}
			}
		}
	}

	return finalResult, nil
}

func (vm *VM) pushFrame(ctx *gcontext.Context, chunkID uint16, chunk *gchunk.Chunk, args []gvalue.Path) (*frame, error) {
	manager := gchunk.NewManager(chunk)
	manager.SetMaxRegisters(vm.Limits.MaxRegisters)
	stack := gstack.New()
	stack.SetMaxDepth(vm.Limits.MaxStackDepth)

	fr := &frame{
		chunkID: chunkID,
		chunk:   chunk,
		manager: manager,
		stack:   stack,
	}
	for _, a := range args {
		if err := fr.stack.Push(a); err != nil {
			return nil, err
		}
	}
	return fr, nil
}

func (vm *VM) decode(fr *frame) (Opcode, error) {
	b, err := fr.manager.Reader.ReadU8()
	if err != nil {
		return 0, err
	}
	op := Opcode(b)
	if !op.Valid() {
		return 0, gerrors.New(gerrors.UnknownOpcode, "unknown opcode %d", b)
	}
	return op, nil
}

// popCallArgs pops the top argc (+1 if onValue) operands. The compiler
// emits arguments in source order (so the earliest argument sits
// deepest among the popped entries); Stack.PopN already returns its
// result in that original push order, which is exactly the slot order
// the callee expects (spec.md §4.5 INVOKE_CHUNK: "the VM driver
// reverses their order" relative to a naive top-to-bottom pop).
func popCallArgs(stack *gstack.Stack, argc int, onValue bool) ([]gvalue.Path, error) {
	n := argc
	if onValue {
		n++
	}
	return stack.PopN(n)
}
