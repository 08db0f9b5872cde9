package gvm_test

import (
	"strings"
	"testing"

	"github.com/xelis-go/funxyvm/internal/gasm"
	"github.com/xelis-go/funxyvm/internal/gchunk"
	"github.com/xelis-go/funxyvm/internal/gvalue"
	"github.com/xelis-go/funxyvm/internal/gvm"
)

func TestDisassembleShowsOperandsAndJumpTarget(t *testing.T) {
	mb := gasm.NewModule()
	no := mb.Constant(gvalue.DefaultCell(gvalue.Bool(false)))
	skipped := mb.Constant(gvalue.DefaultCell(gvalue.U8(1)))

	cb := mb.Chunk(0, 0, false)
	chunkID := cb.Const(no).JumpIfFalse("else").
		Const(skipped).Return().
		Label("else").Return().
		Build()

	mod := mb.Build()
	chunk, ok := mod.Chunk(chunkID)
	if !ok {
		t.Fatal("expected chunk to exist")
	}

	trace := gvm.Disassemble(chunk, "test_chunk")
	if !strings.Contains(trace, "== test_chunk ==") {
		t.Fatalf("expected a header line, got:\n%s", trace)
	}
	if !strings.Contains(trace, "CONST") {
		t.Fatalf("expected CONST in trace, got:\n%s", trace)
	}
	if !strings.Contains(trace, "->") {
		t.Fatalf("expected a resolved jump target arrow in trace, got:\n%s", trace)
	}
}

func TestDisassembleTruncatedChunkDoesNotPanic(t *testing.T) {
	chunk := gchunk.NewChunk(0, 0, false)
	chunk.WriteByte(byte(gvm.OP_CONST))
	chunk.WriteByte(0x01) // only half of the u16 operand

	trace := gvm.Disassemble(chunk, "truncated")
	if !strings.Contains(trace, "<truncated>") {
		t.Fatalf("expected a <truncated> marker, got:\n%s", trace)
	}
}
