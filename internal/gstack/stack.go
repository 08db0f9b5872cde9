// Package gstack implements the operand stack shared by instructions
// within one call frame (spec.md §4.3).
package gstack

import (
	"github.com/xelis-go/funxyvm/internal/gerrors"
	"github.com/xelis-go/funxyvm/internal/gvalue"
)

// MaxDepth is the hard upper bound on operand stack depth; exceeding
// it is fatal (spec.md §4.3, §9 Open Questions: fixed at 65536 Paths,
// matching the register file's 16-bit addressing space).
const MaxDepth = 65536

// Stack is a single typed stack of Paths, shared across instructions
// within one frame (spec.md §4.3: push, pop, pop_n, peek, dup,
// swap(i)). Grounded on the teacher's internal/vm operand-stack
// discipline (vm/vm_exec.go push/pop helpers), generalized from
// evaluator.Object to gvalue.Path.
type Stack struct {
	items    []gvalue.Path
	maxDepth int
}

func New() *Stack {
	return &Stack{items: make([]gvalue.Path, 0, 16), maxDepth: MaxDepth}
}

func (s *Stack) Len() int { return len(s.items) }

// SetMaxDepth overrides the hard overflow bound, e.g. from a host's
// gconfig.Limits.MaxStackDepth.
func (s *Stack) SetMaxDepth(n int) { s.maxDepth = n }

func (s *Stack) Push(p gvalue.Path) error {
	if len(s.items) >= s.maxDepth {
		return gerrors.New(gerrors.StackOverflow, "operand stack exceeds %d entries", s.maxDepth)
	}
	s.items = append(s.items, p)
	return nil
}

func (s *Stack) Pop() (gvalue.Path, error) {
	if len(s.items) == 0 {
		return gvalue.Path{}, gerrors.New(gerrors.StackUnderflow, "pop from empty operand stack")
	}
	p := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return p, nil
}

// PopN pops n items, returning them in original (bottom-to-top) push
// order — the order callers need to rebuild argument lists.
func (s *Stack) PopN(n int) ([]gvalue.Path, error) {
	if n < 0 || n > len(s.items) {
		return nil, gerrors.New(gerrors.StackUnderflow, "pop_n(%d) exceeds depth %d", n, len(s.items))
	}
	start := len(s.items) - n
	out := make([]gvalue.Path, n)
	copy(out, s.items[start:])
	s.items = s.items[:start]
	return out, nil
}

// Peek returns the i-th item from the top (0 = top) without removing
// it.
func (s *Stack) Peek(i int) (*gvalue.Path, error) {
	idx := len(s.items) - 1 - i
	if idx < 0 || idx >= len(s.items) {
		return nil, gerrors.New(gerrors.StackUnderflow, "peek(%d) exceeds depth %d", i, len(s.items))
	}
	return &s.items[idx], nil
}

// Dup duplicates the top of stack.
func (s *Stack) Dup() error {
	top, err := s.Peek(0)
	if err != nil {
		return err
	}
	return s.Push(top.Clone())
}

// Swap exchanges the top of stack with the element i from the top.
func (s *Stack) Swap(i int) error {
	if i == 0 {
		return nil
	}
	topIdx := len(s.items) - 1
	otherIdx := topIdx - i
	if otherIdx < 0 || topIdx < 0 {
		return gerrors.New(gerrors.StackUnderflow, "swap(%d) exceeds depth %d", i, len(s.items))
	}
	s.items[topIdx], s.items[otherIdx] = s.items[otherIdx], s.items[topIdx]
	return nil
}
