package gvm

import (
	"golang.org/x/sync/errgroup"

	"github.com/xelis-go/funxyvm/internal/gcontext"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

// Invocation describes one independent Invoke call to run as part of
// a RunPool batch.
type Invocation struct {
	ChunkID uint16
	Args    []gvalue.Path
	Ctx     *gcontext.Context
}

// Result holds one Invocation's outcome, in input order.
type Result struct {
	Value *gvalue.Path
	Err   error
}

// RunPool runs N independent invocations of the same Module/Environment
// concurrently, each on its own Context (spec.md §5: "concurrency must
// be achieved by running multiple VM instances on separate threads,
// each with its own Module view... and its own Context"). The Module
// and Environment are immutable and shared read-only; nothing else is
// shared across the goroutines errgroup spawns.
func (vm *VM) RunPool(invocations []Invocation) []Result {
	results := make([]Result, len(invocations))

	var g errgroup.Group
	for i, inv := range invocations {
		i, inv := i, inv
		g.Go(func() error {
			value, err := vm.Invoke(inv.Ctx, inv.ChunkID, inv.Args)
			results[i] = Result{Value: value, Err: err}
			return nil
		})
	}
	// Errors are per-invocation, not batch-fatal: Wait only joins
	// goroutines here since each Go closure always returns nil and
	// records its own error in results.
	_ = g.Wait()

	return results
}
