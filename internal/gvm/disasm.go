package gvm

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/xelis-go/funxyvm/internal/gchunk"
)

// Disassemble returns a human-readable trace of a Chunk's bytecode,
// one instruction per line, columns aligned with tabwriter. Grounded
// on the teacher's Disassemble/disassembleInstruction pair
// (internal/vm/disasm.go), generalized from the teacher's Lines-keyed
// source-mapped trace to this opcode set; immediate operands are
// decoded the same way dispatch.go reads them so a trace always
// matches actual execution.
func Disassemble(chunk *gchunk.Chunk, name string) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 2, 2, ' ', 0)

	fmt.Fprintf(tw, "== %s ==\n", name)

	r := gchunk.NewReader(chunk)
	for !r.AtEnd() {
		offset := r.PC()
		b, err := r.ReadU8()
		if err != nil {
			fmt.Fprintf(tw, "%04d\t<truncated>\n", offset)
			break
		}
		op := Opcode(b)
		if !op.Valid() {
			fmt.Fprintf(tw, "%04d\t%s\t%d\n", offset, "UNKNOWN", b)
			continue
		}
		fmt.Fprintf(tw, "%04d\t%s", offset, op)
		writeOperands(tw, r, op)
		fmt.Fprintln(tw)
	}

	tw.Flush()
	return sb.String()
}

func writeOperands(tw *tabwriter.Writer, r *gchunk.Reader, op Opcode) {
	switch op {
	case OP_CONST, OP_MEM_LOAD, OP_MEM_SET, OP_SUB_LOAD, OP_NEW_ARRAY, OP_NEW_MAP:
		v, err := r.ReadU16()
		if err != nil {
			fmt.Fprintf(tw, "\t<truncated>")
			return
		}
		fmt.Fprintf(tw, "\t%d", v)

	case OP_POP_N, OP_SWAP, OP_CAST:
		v, err := r.ReadU8()
		if err != nil {
			fmt.Fprintf(tw, "\t<truncated>")
			return
		}
		fmt.Fprintf(tw, "\t%d", v)

	case OP_JUMP, OP_JUMP_IF_FALSE, OP_JUMP_IF_FALSE_KEEP, OP_ITER_NEXT:
		target, err := r.ReadJumpOffset()
		if err != nil {
			fmt.Fprintf(tw, "\t<truncated>")
			return
		}
		fmt.Fprintf(tw, "\t-> %04d", target)

	case OP_INVOKE_CHUNK, OP_SYSCALL:
		id, err1 := r.ReadU16()
		onValue, err2 := r.ReadBool()
		argc, err3 := r.ReadU8()
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprintf(tw, "\t<truncated>")
			return
		}
		fmt.Fprintf(tw, "\tid=%d on_value=%v argc=%d", id, onValue, argc)

	case OP_NEW_STRUCT:
		typeID, err1 := r.ReadU16()
		n, err2 := r.ReadU16()
		if err1 != nil || err2 != nil {
			fmt.Fprintf(tw, "\t<truncated>")
			return
		}
		fmt.Fprintf(tw, "\ttype=%d n=%d", typeID, n)

	case OP_NEW_ENUM:
		typeID, err1 := r.ReadU16()
		variant, err2 := r.ReadU8()
		n, err3 := r.ReadU16()
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Fprintf(tw, "\t<truncated>")
			return
		}
		fmt.Fprintf(tw, "\ttype=%d variant=%d n=%d", typeID, variant, n)
	}
}
