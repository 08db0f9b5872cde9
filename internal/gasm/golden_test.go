package gasm_test

import (
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/xelis-go/funxyvm/internal/gasm"
	"github.com/xelis-go/funxyvm/internal/gvalue"
	"github.com/xelis-go/funxyvm/internal/gvm"
)

// golden holds, per fixture, the lines an assembled chunk's
// disassembly trace must contain, stored as a txtar archive so the
// expectations stay easy to read/diff instead of embedded as scattered
// Go string literals.
var golden = txtar.Parse([]byte(`
-- add_two.want --
== add_two ==
CONST
CONST
ADD
RETURN
`))

func wantLinesFor(t *testing.T, name string) []string {
	t.Helper()
	for _, f := range golden.Files {
		if f.Name == name {
			var lines []string
			for _, line := range strings.Split(strings.TrimSpace(string(f.Data)), "\n") {
				if line != "" {
					lines = append(lines, line)
				}
			}
			return lines
		}
	}
	t.Fatalf("no golden fixture named %q", name)
	return nil
}

func TestAssembledChunkMatchesGoldenDisassembly(t *testing.T) {
	mb := gasm.NewModule()
	two := mb.Constant(gvalue.DefaultCell(gvalue.U32(2)))
	three := mb.Constant(gvalue.DefaultCell(gvalue.U32(3)))

	cb := mb.Chunk(0, 0, false)
	chunkID := cb.Const(two).Const(three).Add().Return().Build()

	mod := mb.Build()
	chunk, ok := mod.Chunk(chunkID)
	if !ok {
		t.Fatal("expected chunk to exist")
	}

	got := gvm.Disassemble(chunk, "add_two")
	for _, want := range wantLinesFor(t, "add_two.want") {
		if !strings.Contains(got, want) {
			t.Fatalf("disassembly missing expected fragment %q, got:\n%s", want, got)
		}
	}
}
