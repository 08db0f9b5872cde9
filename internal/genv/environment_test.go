package genv

import (
	"testing"

	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

func TestBuilderRegistersSequentialIDs(t *testing.T) {
	b := NewBuilder()
	handler := func(recv *gvalue.Path, args *Deque, ctx *gcontext.Context) (*gvalue.ValueCell, error) {
		return nil, nil
	}
	id1 := b.RegisterNativeFunction("a", nil, nil, handler, 1, nil)
	id2 := b.RegisterNativeFunction("b", nil, nil, handler, 1, nil)
	if id2 != id1+1 {
		t.Fatalf("expected sequential ids, got %d then %d", id1, id2)
	}

	env := b.Build()
	entry, err := env.Function(id1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Name != "a" {
		t.Fatalf("got name %q, want \"a\"", entry.Name)
	}
}

func TestFunctionUnknownID(t *testing.T) {
	env := NewBuilder().Build()
	if _, err := env.Function(999); err == nil {
		t.Fatal("expected UnknownSyscall for an out-of-range id")
	}
}

func TestDequePopFrontOrder(t *testing.T) {
	a := gvalue.NewOwned(gvalue.DefaultCell(gvalue.U8(1)))
	b := gvalue.NewOwned(gvalue.DefaultCell(gvalue.U8(2)))
	d := NewDeque([]gvalue.Path{a, b})

	first, err := d.PopFront()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AsRef().Prim.AsU64() != 1 {
		t.Fatalf("expected first arg popped to be 1, got %d", first.AsRef().Prim.AsU64())
	}
	second, err := d.PopFront()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.AsRef().Prim.AsU64() != 2 {
		t.Fatalf("expected second arg popped to be 2, got %d", second.AsRef().Prim.AsU64())
	}
	if _, err := d.PopFront(); err == nil {
		t.Fatal("expected NotEnoughArguments popping an empty deque")
	}
}

func TestOpaqueRegistrationDedupesByName(t *testing.T) {
	b := NewBuilder()
	id1 := b.RegisterOpaque("Handle", nil, nil)
	id2 := b.RegisterOpaque("Handle", nil, nil)
	if id1 != id2 {
		t.Fatalf("re-registering the same opaque name should return the same id, got %d and %d", id1, id2)
	}
}

func TestEntryStringFormat(t *testing.T) {
	recv := gvalue.Simple(gvalue.TString)
	e := &Entry{Name: "len", Receiver: &recv, Params: nil}
	if got := e.String(); got != "String.len/0" {
		t.Fatalf("got %q", got)
	}
}
