// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"github.com/incrlabs/incr/values"
)

// A Cell is a typed handle to a node in an incremental graph. Cells
// are cheap values; copying a Cell does not copy the underlying node.
// The combinators in this package (Map, Bind, and friends) are free
// functions rather than methods because they introduce new type
// parameters.
type Cell[T any] struct {
	node *Node
}

// Node returns the cell's underlying node.
func (c Cell[T]) Node() *Node {
	return c.node
}

// Named sets the cell's identifier, used in logs and DOT output, and
// returns the cell for chaining.
func (c Cell[T]) Named(ident string) Cell[T] {
	c.node.ident = ident
	return c
}

// SetCutoff overrides the cell's cutoff predicate. The predicate is
// consulted after each recompute with the previous and fresh values;
// when it reports true, the fresh value is installed but dependents
// are not notified. The default predicate is values.Equal.
func (c Cell[T]) SetCutoff(eq func(old, new T) bool) Cell[T] {
	c.node.cutoff = func(old, new values.T) bool {
		return eq(old.(T), new.(T))
	}
	return c
}

// CutoffNever is a cutoff predicate under which every recompute
// propagates, even when the value is unchanged.
func CutoffNever[T any](T, T) bool {
	return false
}

// CutoffAlways is a cutoff predicate under which no recompute
// propagates; dependents see only the cell's initial value.
func CutoffAlways[T any](T, T) bool {
	return true
}

// Read wraps an untyped node in a typed cell. The caller asserts that
// the node's values are of type T; a mismatch panics inside the
// reading combinator's recompute.
func Read[T any](n *Node) Cell[T] {
	return Cell[T]{n}
}

// A Var is an input cell whose value is set externally. Sets are
// staged: they take effect at the next Stabilize call, and the last
// set before stabilization wins.
type Var[T any] struct {
	Cell[T]
}

// NewVar creates an input cell on g holding the initial value v.
func NewVar[T any](g *Graph, v T) Var[T] {
	n := g.newNode(OpVar, "", nil)
	n.pending = v
	return Var[T]{Cell[T]{n}}
}

// Set stages v as the variable's next value. Repeated sets between
// stabilizations overwrite one another; setting the current value
// still counts as a set, and the cutoff decides during stabilization
// whether dependents recompute.
func (v Var[T]) Set(val T) {
	n := v.node
	n.pending = val
	if !n.hasPending {
		n.hasPending = true
		n.g.vars = append(n.g.vars, n)
	}
}

// Const creates a cell on g that always holds v. Constants compute
// once and never change thereafter.
func Const[T any](g *Graph, v T) Cell[T] {
	n := g.newNode(OpConst, "", nil)
	n.pending = v
	return Cell[T]{n}
}

// Map creates a cell computing f over a's current value. f must be a
// pure function of its argument: the engine recomputes it whenever a
// changes (and at most once per pass), and skips it when a does not.
func Map[A, B any](a Cell[A], f func(A) B) Cell[B] {
	g := a.node.g
	n := g.newNode(OpMap, "", []*Node{a.node})
	n.fn = func(args []values.T) values.T {
		return f(args[0].(A))
	}
	return Cell[B]{n}
}

// Map2 creates a cell computing f over the current values of a and b.
func Map2[A, B, C any](a Cell[A], b Cell[B], f func(A, B) C) Cell[C] {
	g := a.node.g
	n := g.newNode(OpMap, "", []*Node{a.node, b.node})
	n.fn = func(args []values.T) values.T {
		return f(args[0].(A), args[1].(B))
	}
	return Cell[C]{n}
}

// Map3 creates a cell computing f over the current values of a, b,
// and c.
func Map3[A, B, C, D any](a Cell[A], b Cell[B], c Cell[C], f func(A, B, C) D) Cell[D] {
	g := a.node.g
	n := g.newNode(OpMap, "", []*Node{a.node, b.node, c.node})
	n.fn = func(args []values.T) values.T {
		return f(args[0].(A), args[1].(B), args[2].(C))
	}
	return Cell[D]{n}
}

// Map4 creates a cell computing f over the current values of a, b, c,
// and d.
func Map4[A, B, C, D, E any](a Cell[A], b Cell[B], c Cell[C], d Cell[D], f func(A, B, C, D) E) Cell[E] {
	g := a.node.g
	n := g.newNode(OpMap, "", []*Node{a.node, b.node, c.node, d.node})
	n.fn = func(args []values.T) values.T {
		return f(args[0].(A), args[1].(B), args[2].(C), args[3].(D))
	}
	return Cell[E]{n}
}

// MapN creates a cell computing f over the current values of a
// homogeneous slice of cells. MapN requires at least one cell.
func MapN[A, B any](f func([]A) B, cells ...Cell[A]) Cell[B] {
	if len(cells) == 0 {
		panic("incr: MapN requires at least one cell")
	}
	g := cells[0].node.g
	deps := make([]*Node, len(cells))
	for i, c := range cells {
		deps[i] = c.node
	}
	n := g.newNode(OpMap, "", deps)
	n.fn = func(args []values.T) values.T {
		vals := make([]A, len(args))
		for i, a := range args {
			vals[i] = a.(A)
		}
		return f(vals)
	}
	return Cell[B]{n}
}
