package gvalue

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// HashCell computes a structural, cycle-safe hash of a ValueCell.
// Grounded on xelis-vm's ValueCell::hash_with_pointers
// (types/src/values/cell/mod.rs): a visited set of already-seen cellRef
// addresses is carried through the recursion; revisiting one short-
// circuits instead of recursing again, so a self-referential Map still
// hashes in finite time (spec.md §3, §8).
func HashCell(cell *ValueCell) uint64 {
	h := fnv.New64a()
	visited := make(map[*cellRef]bool)
	hashCellInto(h, cell, visited)
	return h.Sum64()
}

func hashCellInto(h hash.Hash64, cell *ValueCell, visited map[*cellRef]bool) {
	var tagByte [1]byte
	tagByte[0] = byte(cell.Tag)
	h.Write(tagByte[:])

	switch cell.Tag {
	case CellDefault:
		writePrimitive(h, cell.Prim)
	case CellArray:
		for _, e := range cell.Elems {
			hashSub(h, e, visited)
		}
	case CellStruct:
		writeU32(h, cell.StructType)
		for _, e := range cell.Elems {
			hashSub(h, e, visited)
		}
	case CellEnum:
		writeU32(h, cell.EnumType)
		h.Write([]byte{cell.EnumVariant})
		for _, e := range cell.Elems {
			hashSub(h, e, visited)
		}
	case CellOptional:
		if cell.Opt == nil {
			writePrimitive(h, Null())
		} else {
			hashSub(h, *cell.Opt, visited)
		}
	case CellMap:
		cell.Map.Iterate(func(key ValueCell, value SubValue) bool {
			hashCellInto(h, &key, visited)
			hashSub(h, value, visited)
			return true
		})
	}
}

func hashSub(h hash.Hash64, sv SubValue, visited map[*cellRef]bool) {
	if !sv.valid() {
		return
	}
	if visited[sv.ref] {
		// Cyclic reference detected: stop recursing, as xelis-vm does.
		return
	}
	visited[sv.ref] = true
	hashCellInto(h, sv.Get(), visited)
}

func writeU32(h hash.Hash64, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	h.Write(b[:])
}

// EqualCells performs structural equality with the same cycle guard as
// HashCell, so comparing two mutually self-referential cells terminates
// (spec.md §9: "structural, not identity, equality on Map keys — with
// the visited-set equally guarding equality").
func EqualCells(a, b *ValueCell) bool {
	return equalCells(a, b, make(map[[2]*cellRef]bool))
}

func equalCells(a, b *ValueCell, visited map[[2]*cellRef]bool) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case CellDefault:
		return a.Prim.Equals(b.Prim)
	case CellArray:
		return equalSubSlices(a.Elems, b.Elems, visited)
	case CellStruct:
		return a.StructType == b.StructType && equalSubSlices(a.Elems, b.Elems, visited)
	case CellEnum:
		return a.EnumType == b.EnumType && a.EnumVariant == b.EnumVariant && equalSubSlices(a.Elems, b.Elems, visited)
	case CellOptional:
		if (a.Opt == nil) != (b.Opt == nil) {
			return false
		}
		if a.Opt == nil {
			return true
		}
		return equalSub(*a.Opt, *b.Opt, visited)
	case CellMap:
		if a.Map.Len() != b.Map.Len() {
			return false
		}
		equal := true
		a.Map.Iterate(func(key ValueCell, value SubValue) bool {
			other, ok := b.Map.Get(key)
			if !ok || !equalSub(value, other, visited) {
				equal = false
				return false
			}
			return true
		})
		return equal
	default:
		return false
	}
}

func equalSubSlices(a, b []SubValue, visited map[[2]*cellRef]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalSub(a[i], b[i], visited) {
			return false
		}
	}
	return true
}

func equalSub(a, b SubValue, visited map[[2]*cellRef]bool) bool {
	if !a.valid() || !b.valid() {
		return a.valid() == b.valid()
	}
	if a.ref == b.ref {
		return true
	}
	key := [2]*cellRef{a.ref, b.ref}
	if visited[key] {
		return true
	}
	visited[key] = true
	return equalCells(a.Get(), b.Get(), visited)
}
