package gvalue

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// writePrimitive feeds a primitive's canonical bytes into h. Grounded on
// the teacher's per-type Hash() methods (internal/vm/value.go) widened
// to the full primitive set of spec.md §3.
func writePrimitive(h hash.Hash64, p Primitive) {
	var buf [9]byte
	buf[0] = byte(p.Tag)
	switch p.Tag {
	case TNull:
		h.Write(buf[:1])
	case TBool, TU8, TU16, TU32, TU64:
		binary.LittleEndian.PutUint64(buf[1:9], p.u64)
		h.Write(buf[:9])
	case TU128, TU256:
		h.Write(buf[:1])
		h.Write(p.big.Bytes())
	case TString:
		h.Write(buf[:1])
		h.Write([]byte(p.str))
	case TRange:
		h.Write(buf[:1])
		writePrimitive(h, p.rng.Lo)
		writePrimitive(h, p.rng.Hi)
	case TOpaque:
		h.Write(buf[:1])
		binary.LittleEndian.PutUint32(buf[1:5], p.opq.TypeID)
		h.Write(buf[1:5])
	}
}

// Hash64 returns a 64-bit hash of a single primitive, using the same
// byte encoding HashCell applies to leaf values.
func Hash64(p Primitive) uint64 {
	h := fnv.New64a()
	writePrimitive(h, p)
	return h.Sum64()
}
