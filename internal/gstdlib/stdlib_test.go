package gstdlib_test

import (
	"testing"

	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/genv"
	"github.com/xelis-go/funxyvm/internal/gstdlib"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

func findEntry(t *testing.T, env *genv.Environment, name string, receiverTag gvalue.TypeTag) *genv.Entry {
	t.Helper()
	for _, e := range env.FunctionsNamed(name) {
		if e.Receiver != nil && e.Receiver.Tag == receiverTag {
			return e
		}
	}
	t.Fatalf("no entry named %q with receiver tag %v", name, receiverTag)
	return nil
}

func buildEnv() *genv.Environment {
	b := genv.NewBuilder()
	gstdlib.Register(b)
	return b.Build()
}

func TestStringLenAndCase(t *testing.T) {
	env := buildEnv()
	ctx := gcontext.New(nil, 1000)

	lenEntry := findEntry(t, env, "len", gvalue.TString)
	recv := gvalue.NewOwned(gvalue.DefaultCell(gvalue.Str("Hello")))
	out, err := lenEntry.Handler(&recv, genv.NewDeque(nil), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prim.AsU64() != 5 {
		t.Fatalf("len(\"Hello\") = %d, want 5", out.Prim.AsU64())
	}

	upperEntry := findEntry(t, env, "to_uppercase", gvalue.TString)
	out, err = upperEntry.Handler(&recv, genv.NewDeque(nil), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prim.AsString() != "HELLO" {
		t.Fatalf("to_uppercase = %q, want HELLO", out.Prim.AsString())
	}
}

func TestStringContainsAndSplit(t *testing.T) {
	env := buildEnv()
	ctx := gcontext.New(nil, 1000)
	recv := gvalue.NewOwned(gvalue.DefaultCell(gvalue.Str("a,b,c")))

	containsEntry := findEntry(t, env, "contains", gvalue.TString)
	args := genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.Str("b,c")))})
	out, err := containsEntry.Handler(&recv, args, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Prim.AsBool() {
		t.Fatal("expected \"a,b,c\" to contain \"b,c\"")
	}

	splitEntry := findEntry(t, env, "split", gvalue.TString)
	args = genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.Str(",")))})
	out, err = splitEntry.Handler(&recv, args, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elems, ok := out.SubVec()
	if !ok || len(elems) != 3 {
		t.Fatalf("expected 3 elements from split, got %+v", out)
	}
	if elems[1].Get().Prim.AsString() != "b" {
		t.Fatalf("split()[1] = %q, want \"b\"", elems[1].Get().Prim.AsString())
	}
}

func TestArrayPushPopGet(t *testing.T) {
	env := buildEnv()
	ctx := gcontext.New(nil, 1000)

	arr := gvalue.ArrayCell([]gvalue.SubValue{
		gvalue.NewSubValue(gvalue.DefaultCell(gvalue.U32(1))),
		gvalue.NewSubValue(gvalue.DefaultCell(gvalue.U32(2))),
	})
	recv := gvalue.NewOwned(arr)

	pushEntry := findEntry(t, env, "push", gvalue.TArray)
	args := genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.U32(3)))})
	if _, err := pushEntry.Handler(&recv, args, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lenEntry := findEntry(t, env, "len", gvalue.TArray)
	out, err := lenEntry.Handler(&recv, genv.NewDeque(nil), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prim.AsU64() != 3 {
		t.Fatalf("len after push = %d, want 3", out.Prim.AsU64())
	}

	getEntry := findEntry(t, env, "get", gvalue.TArray)
	args = genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.U64(2)))})
	out, err = getEntry.Handler(&recv, args, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prim.AsU64() != 3 {
		t.Fatalf("get(2) = %d, want 3", out.Prim.AsU64())
	}

	popEntry := findEntry(t, env, "pop", gvalue.TArray)
	out, err = popEntry.Handler(&recv, genv.NewDeque(nil), ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prim.AsU64() != 3 {
		t.Fatalf("pop() = %d, want 3", out.Prim.AsU64())
	}
	elems, _ := recv.AsRef().SubVec()
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements left after pop, got %d", len(elems))
	}
}

func TestArrayGetOutOfBounds(t *testing.T) {
	env := buildEnv()
	ctx := gcontext.New(nil, 1000)
	recv := gvalue.NewOwned(gvalue.ArrayCell([]gvalue.SubValue{
		gvalue.NewSubValue(gvalue.DefaultCell(gvalue.U32(1))),
	}))

	getEntry := findEntry(t, env, "get", gvalue.TArray)
	args := genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.U64(5)))})
	if _, err := getEntry.Handler(&recv, args, ctx); err == nil {
		t.Fatal("expected an OutOfBounds error indexing past the end of the array")
	}
}

func TestMapContainsKeyAndInsert(t *testing.T) {
	env := buildEnv()
	ctx := gcontext.New(nil, 1000)

	m := gvalue.NewMapCell()
	recv := gvalue.NewOwned(gvalue.MapCellOf(m))

	insertEntry := findEntry(t, env, "insert", gvalue.TMap)
	args := genv.NewDeque([]gvalue.Path{
		gvalue.NewOwned(gvalue.DefaultCell(gvalue.Str("key"))),
		gvalue.NewOwned(gvalue.DefaultCell(gvalue.U32(42))),
	})
	if _, err := insertEntry.Handler(&recv, args, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	containsEntry := findEntry(t, env, "contains_key", gvalue.TMap)
	args = genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.Str("key")))})
	out, err := containsEntry.Handler(&recv, args, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Prim.AsBool() {
		t.Fatal("expected contains_key(\"key\") to be true after insert")
	}

	missingArgs := genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.Str("nope")))})
	out, err = containsEntry.Handler(&recv, missingArgs, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prim.AsBool() {
		t.Fatal("expected contains_key(\"nope\") to be false")
	}
}

func TestRangeContains(t *testing.T) {
	env := buildEnv()
	ctx := gcontext.New(nil, 1000)

	elemType := gvalue.Simple(gvalue.TU32)
	recv := gvalue.NewOwned(gvalue.DefaultCell(gvalue.RangeOf(gvalue.U32(1), gvalue.U32(10), elemType)))

	containsEntry := findEntry(t, env, "contains", gvalue.TRange)

	inRange := genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.U32(5)))})
	out, err := containsEntry.Handler(&recv, inRange, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Prim.AsBool() {
		t.Fatal("expected 5 to be within [1, 10)")
	}

	outOfRange := genv.NewDeque([]gvalue.Path{gvalue.NewOwned(gvalue.DefaultCell(gvalue.U32(10)))})
	out, err = containsEntry.Handler(&recv, outOfRange, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Prim.AsBool() {
		t.Fatal("expected the upper bound 10 to be excluded from [1, 10)")
	}
}
