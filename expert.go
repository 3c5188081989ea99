// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/values"
)

// An Expert is a cell whose dependency edges are managed by hand
// rather than fixed at construction. Each edge may carry an onChange
// hook, invoked during the expert's recompute for every dependency
// whose value changed since the hook last observed it; hooks may add
// and remove dependencies, and the expert is recomputed again in the
// same pass after any structural change settles.
//
// Experts are the extension point on which the incremental-map layer
// is built; they have no privileged access to the scheduler.
type Expert struct {
	n *Node
}

type expertState struct {
	fn    func() values.T
	edges []*ExpertEdge
	// dirty records a structural change (edge added or removed) since
	// the last recompute, forcing a follow-up recompute in the same
	// pass so that hooks for fresh edges are delivered.
	dirty bool
}

// An ExpertEdge is a handle to one manually managed dependency edge.
type ExpertEdge struct {
	dep      int
	onChange func(values.T)
	seenAt   int64
	dead     bool
}

// NewExpert creates an expert cell on g. The recompute function
// assembles the cell's value from state accumulated by its edge
// hooks; it runs only after all hooks for the pass have been
// delivered and all dependencies hold computed values.
func NewExpert(g *Graph, ident string, recompute func() values.T) *Expert {
	n := g.newNode(OpExpert, ident, nil)
	n.expert = &expertState{fn: recompute}
	return &Expert{n: n}
}

// Node returns the expert's underlying cell.
func (e *Expert) Node() *Node {
	return e.n
}

// ExpertCell returns the expert's value as a typed cell.
func ExpertCell[T any](e *Expert) Cell[T] {
	return Cell[T]{e.n}
}

// AddDependency adds a dependency edge from the expert to dep. The
// onChange hook, if non-nil, is invoked with dep's value during each
// recompute in which that value changed. The expert's height is
// raised above dep's as needed.
func (e *Expert) AddDependency(dep *Node, onChange func(values.T)) *ExpertEdge {
	n := e.n
	g := n.g
	if dep.g != g {
		panic(errors.E("expert", n.digest, errors.Contract,
			errors.New("dependency belongs to a different graph")))
	}
	if dep.dead {
		panic(errors.E("expert", n.digest, errors.Contract,
			errors.New("dependency was reclaimed")))
	}
	edge := &ExpertEdge{dep: dep.id, onChange: onChange}
	n.expert.edges = append(n.expert.edges, edge)
	g.addEdge(dep, n)
	n.deps = append(n.deps, dep.id)
	if dep.height >= n.height {
		g.raiseHeight(n, dep.height+1)
	}
	g.invalidateExpert(n)
	return edge
}

// RemoveDependency removes a previously added edge, reclaiming the
// dependency's subgraph if nothing else references it. Removing an
// edge twice is a contract violation.
func (e *Expert) RemoveDependency(edge *ExpertEdge) {
	n := e.n
	g := n.g
	if edge.dead {
		panic(errors.E("expert", n.digest, errors.Contract,
			errors.New("dependency edge removed twice")))
	}
	edge.dead = true
	if dep := g.node(edge.dep); dep != nil {
		n.deps = removeID(n.deps, dep.id)
		g.removeEdge(dep, n)
	}
	g.invalidateExpert(n)
}

// Invalidate schedules the expert for recomputation on the next pass
// even if none of its dependencies changed, for use after out-of-band
// state changes.
func (e *Expert) Invalidate() {
	e.n.g.invalidateExpert(e.n)
}

// invalidateExpert arranges for n to recompute. During a pass the
// expert's own recompute notices the structural change and requeues
// itself; outside a pass the node is carried into the next one.
func (g *Graph) invalidateExpert(n *Node) {
	n.expert.dirty = true
	if !g.inPass {
		g.carry = append(g.carry, n)
	}
}

// recomputeExpert recomputes an OpExpert node: it delivers change
// hooks for every edge whose dependency changed since the hook last
// saw it, then, once the structure is quiescent (no height raise, no
// uncomputed dependency), assembles the node's value. Reports
// requeued=true when the node must be processed again later in the
// pass.
func (g *Graph) recomputeExpert(n *Node, pass int64) (new values.T, requeued bool) {
	st := n.expert
	st.dirty = false
	h0 := n.height
	// Hooks may append edges while we iterate; the range observes
	// the snapshot, and fresh edges are handled on the follow-up
	// recompute triggered by their dependencies' first computation.
	edges := st.edges
	saved := g.minHeight
	g.minHeight = n.height
	for _, edge := range edges {
		if edge.dead {
			continue
		}
		dep := g.node(edge.dep)
		if dep == nil || !dep.valid {
			continue
		}
		if dep.changedAt > edge.seenAt {
			edge.seenAt = dep.changedAt
			if edge.onChange != nil {
				edge.onChange(dep.value)
			}
		}
	}
	g.minHeight = saved
	// Compact dead edges.
	live := st.edges[:0]
	for _, edge := range st.edges {
		if !edge.dead {
			live = append(live, edge)
		}
	}
	st.edges = live
	if n.height > h0 || st.dirty {
		// The structure changed under us: recompute again once the
		// fresh edges' dependencies have computed.
		st.dirty = false
		g.requeue(n)
		return nil, true
	}
	for _, edge := range st.edges {
		dep := g.node(edge.dep)
		if dep == nil {
			panic(errors.E("expert", n.digest, errors.Fatal,
				errors.New("dependency reclaimed while referenced")))
		}
		if !dep.valid {
			g.enqueueClosure(dep)
			g.requeue(n)
			return nil, true
		}
	}
	return st.fn(), false
}
