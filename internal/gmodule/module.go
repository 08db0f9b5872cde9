// Package gmodule defines Module, the immutable unit of compiled
// program data the VM executes (spec.md §3).
package gmodule

import (
	"github.com/xelis-go/funxyvm/internal/gchunk"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

// StructType is one entry of a Module's struct catalog: a stable id
// plus its field types in declaration order.
type StructType struct {
	ID         uint32
	Name       string
	FieldTypes []gvalue.Type
}

// EnumVariant is one variant of an EnumType.
type EnumVariant struct {
	Name       string
	FieldTypes []gvalue.Type
}

// EnumType is one entry of a Module's enum catalog.
type EnumType struct {
	ID       uint32
	Name     string
	Variants []EnumVariant
}

// Module is immutable after compilation (spec.md §3): an ordered
// constant pool, an ordered chunk table addressed by 16-bit id, a
// catalog of struct and enum types by stable id, and the set of entry
// chunk ids publicly callable from a host. Grounded on the teacher's
// internal/vm.Bundle (vm/bundle.go), narrowed from the teacher's
// multi-command/resource-embedding bundle down to the single flat unit
// this spec describes, with struct/enum catalogs added since this VM
// (unlike the teacher's dynamically-typed evaluator.Object model) needs
// a typed composite catalog to interpret NEW_STRUCT/NEW_ENUM operands.
type Module struct {
	Constants []gvalue.ValueCell
	Chunks    []*gchunk.Chunk

	Structs map[uint32]StructType
	Enums   map[uint32]EnumType

	Entries map[uint32]bool
}

func New() *Module {
	return &Module{
		Structs: make(map[uint32]StructType),
		Enums:   make(map[uint32]EnumType),
		Entries: make(map[uint32]bool),
	}
}

func (m *Module) AddConstant(v gvalue.ValueCell) uint32 {
	m.Constants = append(m.Constants, v)
	return uint32(len(m.Constants) - 1)
}

func (m *Module) AddChunk(c *gchunk.Chunk) uint16 {
	m.Chunks = append(m.Chunks, c)
	return uint16(len(m.Chunks) - 1)
}

func (m *Module) MarkEntry(chunkID uint16) {
	m.Entries[uint32(chunkID)] = true
}

func (m *Module) IsEntry(chunkID uint16) bool {
	return m.Entries[uint32(chunkID)]
}

func (m *Module) Chunk(id uint16) (*gchunk.Chunk, bool) {
	if int(id) >= len(m.Chunks) {
		return nil, false
	}
	return m.Chunks[id], true
}

func (m *Module) Constant(idx uint16) (gvalue.ValueCell, bool) {
	if int(idx) >= len(m.Constants) {
		return gvalue.ValueCell{}, false
	}
	return m.Constants[idx], true
}
