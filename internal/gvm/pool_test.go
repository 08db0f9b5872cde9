package gvm_test

import (
	"testing"

	"github.com/xelis-go/funxyvm/internal/gasm"
	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/genv"
	"github.com/xelis-go/funxyvm/internal/gvalue"
	"github.com/xelis-go/funxyvm/internal/gvm"
)

func TestRunPoolRunsIndependentInvocationsConcurrently(t *testing.T) {
	mb := gasm.NewModule()
	one := mb.Constant(gvalue.DefaultCell(gvalue.U32(1)))
	cb := mb.Chunk(1, 0, false)
	chunkID := cb.Const(one).Add().Return().Build()
	mod := mb.Build()
	env := genv.NewBuilder().Build()
	vm := gvm.New(mod, env)

	const n = 20
	invocations := make([]gvm.Invocation, n)
	for i := 0; i < n; i++ {
		invocations[i] = gvm.Invocation{
			ChunkID: chunkID,
			Args:    []gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.U32(uint32(i))))},
			Ctx:     gcontext.New(nil, 1_000_000),
		}
	}

	results := vm.RunPool(invocations)
	if len(results) != n {
		t.Fatalf("expected %d results, got %d", n, len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("invocation %d: unexpected error: %v", i, r.Err)
		}
		if got := r.Value.AsRef().Prim.AsU64(); got != uint64(i)+1 {
			t.Fatalf("invocation %d: got %d, want %d", i, got, uint64(i)+1)
		}
	}
}

func TestRunPoolIsolatesErrorsPerInvocation(t *testing.T) {
	mb := gasm.NewModule()
	okChunk := mb.Chunk(0, 0, false)
	okChunkID := okChunk.Const(mb.Constant(gvalue.DefaultCell(gvalue.U32(5)))).Return().Build()

	failChunk := mb.Chunk(0, 0, false)
	failChunkID := failChunk.Label("loop").Jump("loop").Build()

	mod := mb.Build()
	env := genv.NewBuilder().Build()
	vm := gvm.New(mod, env)

	invocations := []gvm.Invocation{
		{ChunkID: okChunkID, Ctx: gcontext.New(nil, 1_000_000)},
		{ChunkID: failChunkID, Ctx: gcontext.New(nil, 1000)},
	}
	results := vm.RunPool(invocations)
	if results[0].Err != nil {
		t.Fatalf("expected the first invocation to succeed, got %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Fatal("expected the second invocation to fail on gas exhaustion")
	}
}
