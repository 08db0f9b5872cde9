package gvalue

import "testing"

func TestCastWideningAlwaysLegal(t *testing.T) {
	got, err := CastCell(DefaultCell(U8(200)), Simple(TU64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Prim.AsU64() != 200 {
		t.Fatalf("got %d", got.Prim.AsU64())
	}
}

func TestCastNarrowingOutOfRangeFails(t *testing.T) {
	if _, err := CastCell(DefaultCell(U64(300)), Simple(TU8)); err == nil {
		t.Fatal("expected CastError for an out-of-range narrowing cast")
	}
}

func TestCastNarrowingInRangeSucceeds(t *testing.T) {
	got, err := CastCell(DefaultCell(U64(200)), Simple(TU8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Prim.AsU64() != 200 {
		t.Fatalf("got %d", got.Prim.AsU64())
	}
}

func TestCastBoolToIntAndBack(t *testing.T) {
	one, err := CastCell(DefaultCell(Bool(true)), Simple(TU32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if one.Prim.AsU64() != 1 {
		t.Fatalf("true -> U32 should be 1, got %d", one.Prim.AsU64())
	}

	back, err := CastCell(DefaultCell(U32(5)), Simple(TBool))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.Prim.AsBool() {
		t.Fatal("nonzero int -> Bool should be true")
	}
}

func TestCastAnyToStringUsesCanonicalForm(t *testing.T) {
	got, err := CastCell(DefaultCell(U16(7)), Simple(TString))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Prim.AsString() != "7" {
		t.Fatalf("got %q", got.Prim.AsString())
	}
}

func TestCastCompositeToPrimitiveFails(t *testing.T) {
	arr := ArrayCell([]SubValue{NewSubValue(DefaultCell(U8(1)))})
	if _, err := CastCell(arr, Simple(TU8)); err == nil {
		t.Fatal("expected CastError casting an Array to a scalar type")
	}
}

func TestCastNullToOptionalIsEmpty(t *testing.T) {
	optType := TOptional
	inner := Simple(TU8)
	got, err := CastCell(DefaultCell(Null()), Type{Tag: optType, Inner: &inner})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Tag != CellOptional || got.Opt != nil {
		t.Fatalf("expected empty Optional, got %+v", got)
	}
}
