// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/liveset"
	"github.com/incrlabs/incr/liveset/bloomlive"
)

// A Memo is a weak memoization table from keys to cells: Get returns
// the cell previously built for a key while that cell is still alive,
// and rebuilds it otherwise. The table itself holds no pin on its
// cells; a memoized cell whose observers and dependents are all gone
// is reclaimed as usual, and the stale table entry is dropped at the
// end of the next stabilization. Memoization therefore never extends
// a cell's lifetime, it only coalesces construction while the cell is
// referenced elsewhere.
type Memo[K comparable, T any] struct {
	g       *Graph
	entries map[K]*Node
}

// memoTable is the untyped face of a Memo, held by the graph for
// pruning after each stabilization.
type memoTable interface {
	prune(live liveset.Liveset)
}

// NewMemo creates a memo table on g.
func NewMemo[K comparable, T any](g *Graph) *Memo[K, T] {
	m := &Memo[K, T]{
		g:       g,
		entries: make(map[K]*Node),
	}
	g.memos = append(g.memos, m)
	return m
}

// Memoize returns the cell memoized under key k, calling build to
// create it if no live cell is stored. The builder must create its
// cell on the memo's graph. The returned cell is pinned only by
// whatever the caller attaches to it.
func (m *Memo[K, T]) Memoize(k K, build func(K) Cell[T]) Cell[T] {
	if n, ok := m.entries[k]; ok && !n.dead {
		return Cell[T]{n}
	}
	c := build(k)
	if c.node.g != m.g {
		panic(errors.E("memo", errors.Contract,
			errors.New("builder returned a cell from a different graph")))
	}
	m.entries[k] = c.node
	return c
}

// Len returns the number of table entries, counting entries for
// reclaimed cells that have not yet been pruned.
func (m *Memo[K, T]) Len() int {
	return len(m.entries)
}

// prune drops entries whose cells are no longer live. The liveset may
// report false positives; Get guards against resurrecting a dead cell
// regardless.
func (m *Memo[K, T]) prune(live liveset.Liveset) {
	for k, n := range m.entries {
		if n.dead || !live.Contains(n.digest) {
			delete(m.entries, k)
		}
	}
}

// pruneMemos drops memo entries referring to reclaimed cells. Live
// cells are summarized in a bloom liveset so that pruning cost scales
// with table sizes, not with repeated digest set construction per
// table.
func (g *Graph) pruneMemos() {
	if len(g.memos) == 0 {
		return
	}
	live := bloomlive.NewEstimate(uint(g.NumLive()) + 1)
	for _, n := range g.nodes {
		if n != nil {
			live.Add(n.digest)
		}
	}
	for _, m := range g.memos {
		m.prune(live)
	}
}
