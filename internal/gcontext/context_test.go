package gcontext

import "testing"

func TestChargeExhaustionPinsGasUsed(t *testing.T) {
	ctx := New(nil, 100)
	if err := ctx.Charge(60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctx.Charge(60); err == nil {
		t.Fatal("expected NotEnoughGas charging past the limit")
	}
	if ctx.GasUsed() != ctx.GasLimit() {
		t.Fatalf("gas_used should pin to gas_limit on exhaustion: used=%d limit=%d", ctx.GasUsed(), ctx.GasLimit())
	}
}

func TestChargeAccumulates(t *testing.T) {
	ctx := New(nil, 1000)
	for i := 0; i < 10; i++ {
		if err := ctx.Charge(7); err != nil {
			t.Fatalf("unexpected error on charge %d: %v", i, err)
		}
	}
	if ctx.GasUsed() != 70 {
		t.Fatalf("gas_used = %d, want 70", ctx.GasUsed())
	}
}

func TestCallDepthBound(t *testing.T) {
	ctx := New(nil, 1_000_000)
	for i := 0; i < MaxCallDepth; i++ {
		if err := ctx.EnterCall(); err != nil {
			t.Fatalf("unexpected StackOverflow at depth %d: %v", i, err)
		}
	}
	if err := ctx.EnterCall(); err == nil {
		t.Fatal("expected StackOverflow past MaxCallDepth")
	}
	ctx.ExitCall()
	if ctx.Depth() != MaxCallDepth-1 {
		t.Fatalf("depth after ExitCall = %d, want %d", ctx.Depth(), MaxCallDepth-1)
	}
}

func TestNilStdDefaultsToBackground(t *testing.T) {
	ctx := New(nil, 1)
	if ctx.Std() == nil {
		t.Fatal("expected a non-nil background context.Context")
	}
}

func TestEachContextGetsADistinctTraceID(t *testing.T) {
	a := New(nil, 1)
	b := New(nil, 1)
	if a.TraceID() == b.TraceID() {
		t.Fatal("expected two separately constructed contexts to get distinct trace ids")
	}
}
