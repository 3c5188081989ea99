// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/digest"
	"github.com/incrlabs/incr/values"
)

// Op is an enum representing the kinds of cells in a graph.
type Op int

const (
	// OpVar is an input cell with no dependencies and an externally
	// settable value.
	OpVar Op = 1 + iota
	// OpConst is a cell holding a fixed value.
	OpConst
	// OpMap applies a function to the current values of a fixed set
	// of dependencies.
	OpMap
	// OpBind forwards the value of a right-hand cell produced by
	// running user code against the left-hand value; the right-hand
	// subgraph may be replaced wholesale between stabilizations.
	OpBind
	// OpExpert is a cell with manually managed dependency edges and
	// per-edge change hooks. The incremental-map layer is built on
	// expert cells.
	OpExpert

	maxOp
)

var opStrings = [maxOp]string{
	0:        "BROKEN",
	OpVar:    "var",
	OpConst:  "const",
	OpMap:    "map",
	OpBind:   "bind",
	OpExpert: "expert",
}

func (o Op) String() string {
	return opStrings[o]
}

// Node is a cell in an incremental graph: a logical union of the ops
// defined by type Op. Dependencies witness computational order and
// are always recomputed before their dependents within a pass.
//
// Nodes are created only through combinators (or a Graph's var and
// expert constructors) and are mutated only by the stabilization
// scheduler, by Var.Set, and by bind rebinds. They are not safe for
// concurrent use.
type Node struct {
	g *Graph

	// id is the node's arena slot; -1 once the node is reclaimed.
	id int
	// seq is the node's creation sequence number; unlike id it is
	// never reused and is stable for the node's lifetime.
	seq int64

	op     Op
	ident  string
	digest digest.Digest

	// value holds the node's current value; valid tells whether the
	// node has been computed by at least one successful pass.
	value values.T
	valid bool

	// height is the node's topological rank: strictly greater than
	// the height of every dependency. It is violated only transiently
	// during a bind rebind and repaired by raiseHeight before the
	// affected nodes are dequeued.
	height int

	// inQueue and queuedAt track scheduler state: queuedAt is the
	// height at which the node was last enqueued. A queue entry whose
	// recorded height disagrees with queuedAt is stale and skipped.
	inQueue  bool
	queuedAt int

	// recomputedAt and changedAt are pass stamps recording when the
	// node last recomputed and when its value last changed under its
	// cutoff predicate.
	recomputedAt int64
	changedAt    int64

	// deps and dependents are dependency edges in both directions,
	// stored as arena ids. Dependents are back-edges and non-owning.
	deps       []int
	dependents []int

	// refs counts dependent edges plus observer pins. A node whose
	// refs drops to zero is reclaimed along with everything it alone
	// depended on.
	refs int

	// cutoff, when non-nil, overrides the default value-equality
	// cutoff predicate for this node.
	cutoff func(old, new values.T) bool

	// fn recomputes an OpMap node from its dependencies' values.
	fn func([]values.T) values.T

	// bindFn produces the right-hand node for an OpBind node; rhs is
	// the currently forwarded node's id (-1 when unbound) and boundAt
	// the pass stamp of the last bindFn invocation.
	bindFn  func(values.T) *Node
	rhs     int
	boundAt int64

	// expert holds the state of an OpExpert node.
	expert *expertState

	// pending stages the next value of an OpVar (and the fixed value
	// of an OpConst); hasPending tells whether the var is staged for
	// the next pass.
	pending    values.T
	hasPending bool

	dead bool
}

// Op returns the node's op.
func (n *Node) Op() Op {
	return n.op
}

// Height returns the node's current topological height.
func (n *Node) Height() int {
	return n.height
}

// Ident returns the node's human-readable identifier, if any.
func (n *Node) Ident() string {
	return n.ident
}

// Digest returns the node's identity digest. It is stable for the
// node's lifetime and never reused, unlike arena ids.
func (n *Node) Digest() digest.Digest {
	return n.digest
}

// Valid tells whether the node has been computed by at least one
// successful stabilization pass.
func (n *Node) Valid() bool {
	return n.valid
}

// Graph returns the graph that owns this node.
func (n *Node) Graph() *Graph {
	return n.g
}

// cutoffHolds applies the node's cutoff predicate (default:
// values.Equal) to an old and freshly computed value.
func (n *Node) cutoffHolds(old, new values.T) bool {
	if n.cutoff != nil {
		return n.cutoff(old, new)
	}
	return values.Equal(old, new)
}

// String returns a shallow, human readable representation of the node.
func (n *Node) String() string {
	s := fmt.Sprintf("node %s %s height %d", n.digest.Short(), n.op, n.height)
	if n.ident != "" {
		s += fmt.Sprintf(" (%s)", n.ident)
	}
	if n.dead {
		s += " dead"
	}
	if len(n.deps) > 0 {
		deps := make([]string, len(n.deps))
		for i, id := range n.deps {
			if dep := n.g.node(id); dep != nil {
				deps[i] = dep.digest.Short()
			} else {
				deps[i] = "?"
			}
		}
		s += " deps " + strings.Join(deps, ",")
	}
	return s
}
