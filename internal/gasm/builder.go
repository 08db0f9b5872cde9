// Package gasm is a test-only bytecode assembler: a fluent builder for
// constructing a gmodule.Module's chunks and constant pool directly,
// standing in for the compiler this repository does not contain
// (spec.md §1 scopes source-to-bytecode compilation out; the VM core
// consumes an already-compiled Module). Grounded on the teacher's
// low-level Chunk.Write*/WriteConstant helpers (internal/vm/chunk.go)
// and xelis-vm's own test harness style (vm/src/tests/full.rs), but
// assembling opcodes by hand instead of going through a lexer/parser/
// compiler pipeline that isn't part of this repository.
package gasm

import (
	"github.com/xelis-go/funxyvm/internal/gchunk"
	"github.com/xelis-go/funxyvm/internal/gmodule"
	"github.com/xelis-go/funxyvm/internal/gvalue"
	"github.com/xelis-go/funxyvm/internal/gvm"
)

// ModuleBuilder accumulates constants and chunks for a test module.
type ModuleBuilder struct {
	mod *gmodule.Module
}

func NewModule() *ModuleBuilder {
	return &ModuleBuilder{mod: gmodule.New()}
}

// Constant adds a ValueCell to the module's constant pool and returns
// its index.
func (b *ModuleBuilder) Constant(cell gvalue.ValueCell) uint16 {
	return uint16(b.mod.AddConstant(cell))
}

func (b *ModuleBuilder) Struct(name string, fields []gvalue.Type) uint32 {
	id := uint32(len(b.mod.Structs))
	b.mod.Structs[id] = gmodule.StructType{ID: id, Name: name, FieldTypes: fields}
	return id
}

func (b *ModuleBuilder) Enum(name string, variants []gmodule.EnumVariant) uint32 {
	id := uint32(len(b.mod.Enums))
	b.mod.Enums[id] = gmodule.EnumType{ID: id, Name: name, Variants: variants}
	return id
}

// Chunk starts a new ChunkBuilder for a function body; call Build()
// on it to register the finished chunk and get back its id.
func (b *ModuleBuilder) Chunk(argCount, localCount uint16, instanceMethod bool) *ChunkBuilder {
	return &ChunkBuilder{
		mod:   b.mod,
		chunk: gchunk.NewChunk(argCount, localCount, instanceMethod),
	}
}

func (b *ModuleBuilder) MarkEntry(chunkID uint16) { b.mod.MarkEntry(chunkID) }

func (b *ModuleBuilder) Build() *gmodule.Module { return b.mod }

// ChunkBuilder emits one instruction at a time into a Chunk, with
// label-based forward/backward jump support so tests don't have to
// hand-compute byte offsets.
type ChunkBuilder struct {
	mod   *gmodule.Module
	chunk *gchunk.Chunk

	labels      map[string]int
	pendingJump []pendingJump
}

type pendingJump struct {
	pos   int
	label string
}

func (c *ChunkBuilder) op(o gvm.Opcode) *ChunkBuilder {
	c.chunk.WriteByte(byte(o))
	return c
}

func (c *ChunkBuilder) u8(v uint8) *ChunkBuilder {
	c.chunk.WriteByte(v)
	return c
}

func (c *ChunkBuilder) u16(v uint16) *ChunkBuilder {
	c.chunk.WriteU16(v)
	return c
}

func (c *ChunkBuilder) boolImm(v bool) *ChunkBuilder {
	c.chunk.WriteBool(v)
	return c
}

func (c *ChunkBuilder) Const(idx uint16) *ChunkBuilder { return c.op(gvm.OP_CONST).u16(idx) }
func (c *ChunkBuilder) MemLoad(reg uint16) *ChunkBuilder { return c.op(gvm.OP_MEM_LOAD).u16(reg) }
func (c *ChunkBuilder) MemSet(reg uint16) *ChunkBuilder { return c.op(gvm.OP_MEM_SET).u16(reg) }
func (c *ChunkBuilder) SubLoad(idx uint16) *ChunkBuilder { return c.op(gvm.OP_SUB_LOAD).u16(idx) }
func (c *ChunkBuilder) Copy() *ChunkBuilder  { return c.op(gvm.OP_COPY) }
func (c *ChunkBuilder) Pop() *ChunkBuilder   { return c.op(gvm.OP_POP) }
func (c *ChunkBuilder) PopN(n uint8) *ChunkBuilder { return c.op(gvm.OP_POP_N).u8(n) }
func (c *ChunkBuilder) Swap(i uint8) *ChunkBuilder { return c.op(gvm.OP_SWAP).u8(i) }

func (c *ChunkBuilder) Add() *ChunkBuilder { return c.op(gvm.OP_ADD) }
func (c *ChunkBuilder) Sub() *ChunkBuilder { return c.op(gvm.OP_SUB) }
func (c *ChunkBuilder) Mul() *ChunkBuilder { return c.op(gvm.OP_MUL) }
func (c *ChunkBuilder) Div() *ChunkBuilder { return c.op(gvm.OP_DIV) }
func (c *ChunkBuilder) Mod() *ChunkBuilder { return c.op(gvm.OP_MOD) }
func (c *ChunkBuilder) Pow() *ChunkBuilder { return c.op(gvm.OP_POW) }
func (c *ChunkBuilder) Neg() *ChunkBuilder { return c.op(gvm.OP_NEG) }
func (c *ChunkBuilder) Not() *ChunkBuilder { return c.op(gvm.OP_NOT) }
func (c *ChunkBuilder) And() *ChunkBuilder { return c.op(gvm.OP_AND) }
func (c *ChunkBuilder) Or() *ChunkBuilder  { return c.op(gvm.OP_OR) }
func (c *ChunkBuilder) Xor() *ChunkBuilder { return c.op(gvm.OP_XOR) }
func (c *ChunkBuilder) Shl() *ChunkBuilder { return c.op(gvm.OP_SHL) }
func (c *ChunkBuilder) Shr() *ChunkBuilder { return c.op(gvm.OP_SHR) }

func (c *ChunkBuilder) Eq() *ChunkBuilder { return c.op(gvm.OP_EQ) }
func (c *ChunkBuilder) Ne() *ChunkBuilder { return c.op(gvm.OP_NE) }
func (c *ChunkBuilder) Lt() *ChunkBuilder { return c.op(gvm.OP_LT) }
func (c *ChunkBuilder) Le() *ChunkBuilder { return c.op(gvm.OP_LE) }
func (c *ChunkBuilder) Gt() *ChunkBuilder { return c.op(gvm.OP_GT) }
func (c *ChunkBuilder) Ge() *ChunkBuilder { return c.op(gvm.OP_GE) }

func (c *ChunkBuilder) Return() *ChunkBuilder { return c.op(gvm.OP_RETURN) }

func (c *ChunkBuilder) InvokeChunk(id uint16, onValue bool, argc uint8) *ChunkBuilder {
	return c.op(gvm.OP_INVOKE_CHUNK).u16(id).boolImm(onValue).u8(argc)
}

func (c *ChunkBuilder) Syscall(id uint16, onValue bool, argc uint8) *ChunkBuilder {
	return c.op(gvm.OP_SYSCALL).u16(id).boolImm(onValue).u8(argc)
}

func (c *ChunkBuilder) NewArray(n uint16) *ChunkBuilder  { return c.op(gvm.OP_NEW_ARRAY).u16(n) }
func (c *ChunkBuilder) NewStruct(typeID, n uint16) *ChunkBuilder {
	return c.op(gvm.OP_NEW_STRUCT).u16(typeID).u16(n)
}
func (c *ChunkBuilder) NewMap(n uint16) *ChunkBuilder { return c.op(gvm.OP_NEW_MAP).u16(n) }
func (c *ChunkBuilder) NewEnum(typeID uint16, variant uint8, n uint16) *ChunkBuilder {
	return c.op(gvm.OP_NEW_ENUM).u16(typeID).u8(variant).u16(n)
}
func (c *ChunkBuilder) NewRange() *ChunkBuilder { return c.op(gvm.OP_NEW_RANGE) }

func (c *ChunkBuilder) IterNew() *ChunkBuilder { return c.op(gvm.OP_ITER_NEW) }
func (c *ChunkBuilder) IterEnd() *ChunkBuilder { return c.op(gvm.OP_ITER_END) }

func (c *ChunkBuilder) Cast(tag gvalue.TypeTag) *ChunkBuilder {
	return c.op(gvm.OP_CAST).u8(uint8(tag))
}

// Label marks the current byte offset as a jump target.
func (c *ChunkBuilder) Label(name string) *ChunkBuilder {
	if c.labels == nil {
		c.labels = make(map[string]int)
	}
	c.labels[name] = c.chunk.Len()
	return c
}

func (c *ChunkBuilder) Jump(label string) *ChunkBuilder {
	return c.jumpOp(gvm.OP_JUMP, label)
}

func (c *ChunkBuilder) JumpIfFalse(label string) *ChunkBuilder {
	return c.jumpOp(gvm.OP_JUMP_IF_FALSE, label)
}

func (c *ChunkBuilder) JumpIfFalseKeep(label string) *ChunkBuilder {
	return c.jumpOp(gvm.OP_JUMP_IF_FALSE_KEEP, label)
}

func (c *ChunkBuilder) IterNext(label string) *ChunkBuilder {
	return c.jumpOp(gvm.OP_ITER_NEXT, label)
}

func (c *ChunkBuilder) jumpOp(o gvm.Opcode, label string) *ChunkBuilder {
	c.op(o)
	pos := c.chunk.WriteJumpOffset()
	c.pendingJump = append(c.pendingJump, pendingJump{pos: pos, label: label})
	return c
}

// Build resolves all labels, registers the chunk with the module, and
// returns its id.
func (c *ChunkBuilder) Build() uint16 {
	for _, pj := range c.pendingJump {
		target, ok := c.labels[pj.label]
		if !ok {
			panic("gasm: undefined label " + pj.label)
		}
		c.chunk.PatchJump(pj.pos, target)
	}
	return c.mod.AddChunk(c.chunk)
}
