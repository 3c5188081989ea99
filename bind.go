// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/values"
)

// Bind creates a cell whose dependency subgraph is produced
// dynamically: whenever a's value changes, f is run against it to
// obtain a right-hand cell, and the bind forwards that cell's value.
// If f returns a different cell than the one currently forwarded, the
// previous right-hand subgraph is detached (and reclaimed if nothing
// else references it) and the new one adopted.
//
// Binding functions must be deterministic in their input: the engine
// may re-invoke f with an unchanged left-hand value (for example
// after height fixups), so f must not rely on being called once per
// change. Cells created inside f belong to the bind's scope and are
// reclaimed with the right-hand subgraph they feed.
func Bind[A, B any](a Cell[A], f func(A) Cell[B]) Cell[B] {
	g := a.node.g
	n := g.newNode(OpBind, "", []*Node{a.node})
	n.bindFn = func(v values.T) *Node {
		return f(v.(A)).node
	}
	return Cell[B]{n}
}

// recomputeBind recomputes an OpBind node. If the left-hand value
// changed since the last binding, the binding function is re-run and
// the right-hand subgraph swapped; otherwise the bind merely forwards
// the current right-hand value. recomputeBind reports requeued=true
// when the node was re-enqueued (because a fresh right-hand subgraph
// must compute first) and will be processed again later in the pass.
func (g *Graph) recomputeBind(n *Node, pass int64) (new values.T, requeued bool) {
	lhs := g.node(n.deps[0])
	if lhs == nil || !lhs.valid {
		panic(errors.E("bind", n.digest, errors.Fatal,
			errors.New("left-hand side not computed before bind")))
	}
	if n.rhs < 0 || lhs.changedAt > n.boundAt {
		n.boundAt = pass
		saved := g.minHeight
		g.minHeight = n.height
		r := n.bindFn(lhs.value)
		g.minHeight = saved
		if r == nil || r.dead {
			panic(errors.E("bind", n.digest, errors.Contract,
				errors.New("binding function returned an invalid cell")))
		}
		if r.g != g {
			panic(errors.E("bind", n.digest, errors.Contract,
				errors.New("binding function returned a cell from a different graph")))
		}
		if r.id != n.rhs {
			// Attach before detach: the new right-hand cell may live
			// inside the old subgraph, and detaching first could
			// reclaim it.
			g.addEdge(r, n)
			if old := g.node(n.rhs); old != nil {
				g.removeEdge(old, n)
			}
			n.deps = append(n.deps[:1], r.id)
			n.rhs = r.id
			g.total.Rebinds++
			g.last.Rebinds++
			if r.height >= n.height {
				g.raiseHeight(n, r.height+1)
			}
		}
	}
	r := g.node(n.rhs)
	if r == nil {
		panic(errors.E("bind", n.digest, errors.Fatal,
			errors.New("right-hand side reclaimed while forwarded")))
	}
	if !r.valid {
		g.enqueueClosure(r)
		g.requeue(n)
		return nil, true
	}
	if r.height >= n.height {
		g.raiseHeight(n, r.height+1)
	}
	return r.value, false
}
