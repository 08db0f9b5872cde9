package gchunk

import (
	"github.com/xelis-go/funxyvm/internal/gerrors"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

// defaultMaxRegisters bounds a frame's register file to a 16-bit index
// space (spec.md §4.2); overridable per Manager via SetMaxRegisters,
// e.g. from a host's gconfig.Limits.MaxRegisters.
const defaultMaxRegisters = 65536

// Manager owns one call frame's mutable state: its registers, its
// iterator stack, and an embedded Reader over the frame's chunk
// (spec.md §4.2). Grounded on the teacher's internal/vm.Frame
// (vm/vm.go), generalized to the register-file + iterator-stack model
// this spec requires in place of the teacher's named-locals frame.
type Manager struct {
	Reader *Reader

	registers    []gvalue.Path
	iterators    []*gvalue.PathIterator
	maxRegisters int
}

func NewManager(c *Chunk) *Manager {
	return &Manager{
		Reader:       NewReader(c),
		registers:    make([]gvalue.Path, 0, c.LocalCount),
		maxRegisters: defaultMaxRegisters,
	}
}

// SetMaxRegisters overrides the register-file overflow bound, e.g.
// from a host's gconfig.Limits.MaxRegisters.
func (m *Manager) SetMaxRegisters(n int) { m.maxRegisters = n }

// GetRegister returns a pointer to the Path stored at idx.
func (m *Manager) GetRegister(idx uint16) (*gvalue.Path, error) {
	if int(idx) >= len(m.registers) {
		return nil, gerrors.New(gerrors.RegisterNotFound, "register %d not found (have %d)", idx, len(m.registers))
	}
	return &m.registers[idx], nil
}

// SetRegister writes p at idx. Per spec.md §4.2, a write may only
// append at len(registers) (growing the sequence by exactly one) or
// overwrite an existing slot; any other index is RegisterOverflow.
func (m *Manager) SetRegister(idx uint16, p gvalue.Path) error {
	switch {
	case int(idx) < len(m.registers):
		m.registers[idx] = p
		return nil
	case int(idx) == len(m.registers):
		if len(m.registers) >= m.maxRegisters {
			return gerrors.New(gerrors.RegisterOverflow, "register file exceeds %d entries", m.maxRegisters)
		}
		m.registers = append(m.registers, p)
		return nil
	default:
		return gerrors.New(gerrors.RegisterOverflow, "register index %d skips past current length %d", idx, len(m.registers))
	}
}

func (m *Manager) PushIterator(it *gvalue.PathIterator) {
	m.iterators = append(m.iterators, it)
}

func (m *Manager) PeekIterator() (*gvalue.PathIterator, error) {
	if len(m.iterators) == 0 {
		return nil, gerrors.New(gerrors.EmptyIterator, "no active iterator")
	}
	return m.iterators[len(m.iterators)-1], nil
}

func (m *Manager) PopIterator() (*gvalue.PathIterator, error) {
	it, err := m.PeekIterator()
	if err != nil {
		return nil, err
	}
	m.iterators = m.iterators[:len(m.iterators)-1]
	return it, nil
}
