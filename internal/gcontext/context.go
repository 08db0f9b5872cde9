// Package gcontext implements Context, the mutable per-invocation
// record threaded through every instruction and native call (spec.md
// §3).
package gcontext

import (
	"context"

	"github.com/google/uuid"

	"github.com/xelis-go/funxyvm/internal/gerrors"
)

// MaxCallDepth is the default bound on the VM driver's frame stack
// (spec.md §4.7: "Call depth is bounded; exceeding it fails with
// StackOverflow"). Grounded on the teacher's internal/vm.MaxFrameCount.
// Overridable per Context via SetMaxCallDepth, e.g. from a host's
// gconfig.Limits.MaxCallDepth.
const MaxCallDepth = 4096

// Context carries a gas budget (decremented on every costed
// operation), the current call depth, and an opaque user-provided slot
// for ambient host state such as a random source or clock (spec.md
// §3). Embeds a stdlib context.Context so a host-side deadline can be
// observed cooperatively, though the spec's own cancellation model
// (§5) is expressed purely as gas, not as the embedded context's
// Done() channel. Grounded on the teacher's VM.Context field
// (internal/vm/vm.go) widened from bare cancellation to a full gas
// ledger.
type Context struct {
	std context.Context

	gasLimit uint64
	gasUsed  uint64

	depth        int
	maxCallDepth int

	traceID uuid.UUID

	UserData any
}

// New starts a Context with a fresh trace id, so a host's logs can
// correlate every instruction/native-call error back to the
// invocation that produced it (spec.md's execution model has no
// notion of request ids itself; this is purely ambient host-side
// observability, the way the teacher tags its own long-running
// evaluations for diagnostics).
func New(std context.Context, gasLimit uint64) *Context {
	if std == nil {
		std = context.Background()
	}
	return &Context{std: std, gasLimit: gasLimit, maxCallDepth: MaxCallDepth, traceID: uuid.New()}
}

// SetMaxCallDepth overrides the call-depth overflow bound, e.g. from a
// host's gconfig.Limits.MaxCallDepth.
func (c *Context) SetMaxCallDepth(n int) { c.maxCallDepth = n }

func (c *Context) Std() context.Context { return c.std }

// TraceID identifies this invocation for correlation in host logs.
func (c *Context) TraceID() uuid.UUID { return c.traceID }

func (c *Context) GasLimit() uint64 { return c.gasLimit }
func (c *Context) GasUsed() uint64  { return c.gasUsed }

func (c *Context) SetGasLimit(n uint64) { c.gasLimit = n }

// Charge deducts cost from the remaining gas budget, failing with
// NotEnoughGas if it would exceed the limit (spec.md §4.7, §7: "gas
// exhaustion... gas_used = limit").
func (c *Context) Charge(cost uint64) error {
	if c.gasUsed+cost > c.gasLimit {
		c.gasUsed = c.gasLimit
		return gerrors.New(gerrors.NotEnoughGas, "gas limit %d exceeded", c.gasLimit)
	}
	c.gasUsed += cost
	return nil
}

// EnterCall increments call depth, failing with StackOverflow past
// MaxCallDepth (spec.md §4.7).
func (c *Context) EnterCall() error {
	if c.depth >= c.maxCallDepth {
		return gerrors.New(gerrors.StackOverflow, "call depth exceeds %d", c.maxCallDepth)
	}
	c.depth++
	return nil
}

func (c *Context) ExitCall() {
	if c.depth > 0 {
		c.depth--
	}
}

func (c *Context) Depth() int { return c.depth }
