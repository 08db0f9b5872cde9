package gchunk

import "github.com/xelis-go/funxyvm/internal/gerrors"

// Reader is a bounded sequential cursor over a Chunk's bytes (spec.md
// §4.1): "every decode fails if it would read past end-of-chunk." Its
// position is the instruction pointer; jumps are relative to the byte
// following the jump's immediate. Grounded on the teacher's
// internal/vm disassembly cursor pattern (vm/disasm.go) generalized
// into a reusable decode-primitive type, since the teacher inlines its
// cursor directly into the interpreter loop rather than factoring it
// out.
type Reader struct {
	code []byte
	pc   int
}

func NewReader(c *Chunk) *Reader {
	return &Reader{code: c.Code}
}

func (r *Reader) PC() int      { return r.pc }
func (r *Reader) SetPC(pc int) { r.pc = pc }
func (r *Reader) AtEnd() bool  { return r.pc >= len(r.code) }
func (r *Reader) Len() int     { return len(r.code) }

func (r *Reader) need(n int) error {
	if r.pc+n > len(r.code) {
		return gerrors.New(gerrors.ModuleFormat, "unexpected end of chunk at offset %d (need %d bytes, have %d)", r.pc, n, len(r.code)-r.pc)
	}
	return nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.code[r.pc]
	r.pc++
	return v, nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := uint16(r.code[r.pc]) | uint16(r.code[r.pc+1])<<8
	r.pc += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := uint32(r.code[r.pc]) | uint32(r.code[r.pc+1])<<8 |
		uint32(r.code[r.pc+2])<<16 | uint32(r.code[r.pc+3])<<24
	r.pc += 4
	return v, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(r.code[r.pc+i]) << (8 * i)
	}
	r.pc += 8
	return v, nil
}

// ReadJumpOffset decodes a signed 16-bit relative jump immediate and
// returns the absolute target: relative to the byte following this
// 2-byte field (spec.md §6).
func (r *Reader) ReadJumpOffset() (int, error) {
	from := r.pc + 2
	raw, err := r.ReadU16()
	if err != nil {
		return 0, err
	}
	return from + int(int16(raw)), nil
}
