package gvalue

import (
	"testing"
	"time"
)

func TestHashCellCyclicTerminates(t *testing.T) {
	placeholder := NewSubValue(ValueCell{})
	self := ArrayCell([]SubValue{placeholder})
	*placeholder.Get() = self

	done := make(chan uint64, 1)
	go func() { done <- HashCell(&self) }()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("HashCell on a self-referential array did not terminate")
	}
}

func TestEqualCellsCyclicTerminates(t *testing.T) {
	aPlaceholder := NewSubValue(ValueCell{})
	a := ArrayCell([]SubValue{aPlaceholder})
	*aPlaceholder.Get() = a

	bPlaceholder := NewSubValue(ValueCell{})
	b := ArrayCell([]SubValue{bPlaceholder})
	*bPlaceholder.Get() = b

	if !EqualCells(&a, &b) {
		t.Fatal("two isomorphic self-referential arrays should compare equal")
	}
}

func TestHashEqualsAcrossClone(t *testing.T) {
	m := NewMapCell()
	m.Put(DefaultCell(U32(1)), NewSubValue(DefaultCell(Str("one"))))
	m.Put(DefaultCell(U32(2)), NewSubValue(DefaultCell(Str("two"))))
	original := MapCellOf(m)

	clone := original.Clone()

	if HashCell(&original) != HashCell(&clone) {
		t.Fatal("hash(V) != hash(clone(V))")
	}
	if !EqualCells(&original, &clone) {
		t.Fatal("clone should compare structurally equal to original")
	}
}

func TestEqualCellsStructuralNotIdentity(t *testing.T) {
	// Built independently, in reverse insertion order: the map's
	// deterministic-by-hash iteration should still converge on equality.
	m1 := NewMapCell()
	m1.Put(DefaultCell(U8(1)), NewSubValue(DefaultCell(Bool(true))))
	m1.Put(DefaultCell(U8(2)), NewSubValue(DefaultCell(Bool(false))))

	m2 := NewMapCell()
	m2.Put(DefaultCell(U8(2)), NewSubValue(DefaultCell(Bool(false))))
	m2.Put(DefaultCell(U8(1)), NewSubValue(DefaultCell(Bool(true))))

	c1, c2 := MapCellOf(m1), MapCellOf(m2)
	if !EqualCells(&c1, &c2) {
		t.Fatal("maps built in different insertion order should still be structurally equal")
	}
}

func TestDistinctIntegerWidthsAreNotEqual(t *testing.T) {
	a := DefaultCell(U8(1))
	b := DefaultCell(U16(1))
	if EqualCells(&a, &b) {
		t.Fatal("U8(1) and U16(1) must not compare equal: integer variants are distinct types")
	}
}
