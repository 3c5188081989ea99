// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"fmt"

	"github.com/grailbio/base/status"
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/log"
	"github.com/oklog/ulid/v2"
)

// GraphConfig provides runtime configuration for graph instances.
type GraphConfig struct {
	// Log is an (optional) logger to which the stabilization
	// transcript is printed at debug level.
	Log *log.Logger

	// Status, if non-nil, receives stabilization progress reports.
	Status *status.Group

	// Config stores the engine tunables to be used; unset fields
	// take defaults.
	Config Config
}

// A Graph is the process-local registry of all live cells and the
// stabilization clock. It owns the height-indexed scheduling
// structure and is the sole mutator of scheduling state.
//
// A Graph is confined to a single goroutine; see the package
// documentation for the concurrency model.
type Graph struct {
	GraphConfig

	// id identifies the graph in logs and DOT output.
	id ulid.ULID

	// nodes is the cell arena, addressed by node id. Reclaimed slots
	// are nil and their ids recycled through free.
	nodes []*Node
	free  []int

	nseq int64 // next creation sequence number

	// minHeight is the height floor for freshly created nodes. It is
	// nonzero only while a bind function or expert hook runs during a
	// pass, so that nodes built mid-pass land at or above the height
	// currently being processed and are still computed before the
	// pass completes.
	minHeight int

	npass  int64 // pass counter (the stabilization clock)
	nstab  int64 // successful Stabilize calls
	inPass bool  // a pass is currently draining the queue

	queue heightQueue

	// vars holds variables staged by Set since the start of the last
	// pass; fresh holds nodes created since then; carry holds nodes
	// left unrecomputed by an aborted pass.
	vars  []*Node
	fresh []*Node
	carry []*Node

	memos []memoTable

	total Stats // cumulative across all Stabilize calls
	last  Stats // most recent Stabilize call
}

// New creates a new, empty graph with the provided configuration.
func New(config GraphConfig) *Graph {
	config.Config.Merge(DefaultConfig)
	g := &Graph{
		GraphConfig: config,
		id:          ulid.Make(),
	}
	g.Log.Debugf("graph %s: created (%s)", g.id, g.Config)
	return g
}

// ID returns the graph's unique identifier.
func (g *Graph) ID() string {
	return g.id.String()
}

// StabilizationCount returns the number of successful Stabilize calls
// made on this graph.
func (g *Graph) StabilizationCount() int64 {
	return g.nstab
}

// NumLive returns the number of live (unreclaimed) cells in the graph.
func (g *Graph) NumLive() int {
	return len(g.nodes) - len(g.free)
}

// node returns the live node with the given arena id, or nil.
func (g *Graph) node(id int) *Node {
	if id < 0 || id >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// newNode allocates a node of the given op with the given
// dependencies, assigning it an arena slot and a height one greater
// than its highest dependency. The node is recorded as fresh so that
// the next pass computes it.
func (g *Graph) newNode(op Op, ident string, deps []*Node) *Node {
	n := &Node{
		g:        g,
		op:       op,
		ident:    ident,
		seq:      g.nseq,
		rhs:      -1,
		queuedAt: -1,
	}
	g.nseq++
	n.digest = Digester.FromString(fmt.Sprintf("%s/%d", g.id, n.seq))
	if len(g.free) > 0 {
		n.id = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
		g.nodes[n.id] = n
	} else {
		n.id = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}
	height := g.minHeight - 1
	for _, dep := range deps {
		if dep.g != g {
			panic(errors.E("newnode", errors.Contract,
				errors.New("dependency belongs to a different graph")))
		}
		if dep.dead {
			panic(errors.E("newnode", dep.digest, errors.Contract,
				errors.New("dependency was reclaimed")))
		}
		g.addEdge(dep, n)
		n.deps = append(n.deps, dep.id)
		if dep.height > height {
			height = dep.height
		}
	}
	n.height = height + 1
	if n.height > g.Config.MaxHeight {
		panic(errors.E("newnode", n.digest, errors.Exhausted,
			errors.Errorf("height %d exceeds maximum %d", n.height, g.Config.MaxHeight)))
	}
	g.fresh = append(g.fresh, n)
	g.total.Created++
	g.last.Created++
	return n
}

// addEdge records that dependent reads dep, pinning dep.
func (g *Graph) addEdge(dep, dependent *Node) {
	dep.dependents = append(dep.dependents, dependent.id)
	dep.refs++
}

// removeEdge removes the dependency edge from dependent to dep,
// reclaiming dep if nothing references it anymore. The caller is
// responsible for updating dependent.deps.
func (g *Graph) removeEdge(dep, dependent *Node) {
	dep.dependents = removeID(dep.dependents, dependent.id)
	dep.refs--
	if dep.refs == 0 {
		g.reclaim(dep)
	}
}

// unpin releases an observer pin on n, reclaiming it if nothing
// references it anymore.
func (g *Graph) unpin(n *Node) {
	n.refs--
	if n.refs == 0 {
		g.reclaim(n)
	}
}

// reclaim removes n from the arena and unrefs its dependencies,
// cascading to everything that n alone kept alive. Reclaimed nodes
// are marked dead; scheduler queue entries and memo table entries
// referring to them are dropped lazily.
func (g *Graph) reclaim(n *Node) {
	work := []*Node{n}
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		if n.dead {
			continue
		}
		n.dead = true
		g.nodes[n.id] = nil
		g.free = append(g.free, n.id)
		for _, id := range n.deps {
			dep := g.node(id)
			if dep == nil {
				continue
			}
			dep.dependents = removeID(dep.dependents, n.id)
			dep.refs--
			if dep.refs == 0 {
				work = append(work, dep)
			}
		}
		n.deps = nil
		n.dependents = nil
		n.id = -1
		g.total.Reclaimed++
		g.last.Reclaimed++
		if g.Log.At(log.DebugLevel) {
			g.Log.Debugf("graph %s: reclaimed %s", g.id, n)
		}
	}
}

func removeID(ids []int, id int) []int {
	for i := range ids {
		if ids[i] == id {
			ids[i] = ids[len(ids)-1]
			return ids[:len(ids)-1]
		}
	}
	return ids
}
