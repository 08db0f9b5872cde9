package gstack

import (
	"testing"

	"github.com/xelis-go/funxyvm/internal/gvalue"
)

func pathOf(n uint64) gvalue.Path {
	return gvalue.NewOwned(gvalue.DefaultCell(gvalue.U64(n)))
}

func TestPushPopOrder(t *testing.T) {
	s := New()
	for _, v := range []uint64{1, 2, 3} {
		if err := s.Push(pathOf(v)); err != nil {
			t.Fatalf("push %d: %v", v, err)
		}
	}
	for _, want := range []uint64{3, 2, 1} {
		got, err := s.Pop()
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if got.AsRef().Prim.AsU64() != want {
			t.Fatalf("pop order wrong: got %d, want %d", got.AsRef().Prim.AsU64(), want)
		}
	}
}

func TestPopNReturnsOriginalPushOrder(t *testing.T) {
	s := New()
	for _, v := range []uint64{10, 20, 30} {
		if err := s.Push(pathOf(v)); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	got, err := s.PopN(3)
	if err != nil {
		t.Fatalf("pop_n: %v", err)
	}
	want := []uint64{10, 20, 30}
	for i, w := range want {
		if got[i].AsRef().Prim.AsU64() != w {
			t.Fatalf("PopN[%d] = %d, want %d (PopN must return bottom-to-top, i.e. original push/argument order)",
				i, got[i].AsRef().Prim.AsU64(), w)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty stack after PopN(3), len=%d", s.Len())
	}
}

func TestPopUnderflow(t *testing.T) {
	s := New()
	if _, err := s.Pop(); err == nil {
		t.Fatal("expected StackUnderflow popping an empty stack")
	}
}

func TestPushOverflow(t *testing.T) {
	s := New()
	for i := 0; i < MaxDepth; i++ {
		if err := s.Push(pathOf(uint64(i))); err != nil {
			t.Fatalf("unexpected overflow at depth %d: %v", i, err)
		}
	}
	if err := s.Push(pathOf(0)); err == nil {
		t.Fatal("expected StackOverflow pushing past MaxDepth")
	}
}

func TestSwap(t *testing.T) {
	s := New()
	s.Push(pathOf(1))
	s.Push(pathOf(2))
	s.Push(pathOf(3))
	if err := s.Swap(2); err != nil {
		t.Fatalf("swap: %v", err)
	}
	top, _ := s.Peek(0)
	bottom, _ := s.Peek(2)
	if top.AsRef().Prim.AsU64() != 1 || bottom.AsRef().Prim.AsU64() != 3 {
		t.Fatalf("swap(2) did not exchange top and bottom-most element: top=%d bottom=%d",
			top.AsRef().Prim.AsU64(), bottom.AsRef().Prim.AsU64())
	}
}

func TestDup(t *testing.T) {
	s := New()
	s.Push(pathOf(5))
	if err := s.Dup(); err != nil {
		t.Fatalf("dup: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2 after dup, got %d", s.Len())
	}
	a, _ := s.Pop()
	b, _ := s.Pop()
	if a.AsRef().Prim.AsU64() != 5 || b.AsRef().Prim.AsU64() != 5 {
		t.Fatal("duplicated entries should carry the same value")
	}
}
