// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"fmt"
	"time"

	"github.com/grailbio/base/status"
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/log"
	"github.com/incrlabs/incr/values"
)

// Stabilize brings every cell's value up to date with the variable
// values set since the previous stabilization. Cells are recomputed
// in non-decreasing height order, each at most once per pass; cutoff
// predicates stop propagation where a recomputed value is judged
// unchanged.
//
// A single Stabilize call may run several internal passes: variable
// sets staged during a pass (by incremental-map machinery) are
// applied in a follow-up pass before Stabilize returns, so that the
// values observed afterwards reflect one consistent snapshot of all
// inputs.
//
// If a user-supplied recompute function fails, the pass is aborted
// and the error returned; cells already recomputed in the pass keep
// their updated values. There is no rollback. Contract violations and
// height exhaustion are returned as distinguishable error kinds (see
// package errors); after an Eval-kind error the caller may correct
// inputs and call Stabilize again.
func (g *Graph) Stabilize() error {
	g.last = Stats{}
	begin := time.Now()
	var task *status.Task
	if g.Status != nil {
		task = g.Status.Start(fmt.Sprintf("stabilize %d", g.nstab+1))
		defer task.Done()
	}
	rounds := 0
	for g.hasWork() {
		if rounds == g.Config.MaxRounds {
			return errors.E("stabilize", errors.Exhausted,
				errors.Errorf("no fixed point after %d passes", rounds))
		}
		if err := g.pass(); err != nil {
			g.Log.Errorf("graph %s: stabilize: %v", g.id, err)
			return err
		}
		rounds++
	}
	g.nstab++
	g.pruneMemos()
	if task != nil {
		task.Print(g.last.String())
	}
	if g.Log.At(log.DebugLevel) {
		g.Log.Debugf("graph %s: stabilize %d: %s in %s (%d passes)",
			g.id, g.nstab, g.last, time.Since(begin), rounds)
	}
	return nil
}

// hasWork tells whether any variable set, fresh cell, or carried-over
// dirty cell awaits a pass.
func (g *Graph) hasWork() bool {
	if len(g.vars) > 0 || len(g.carry) > 0 {
		return true
	}
	for _, n := range g.fresh {
		if !n.dead && !n.valid {
			return true
		}
	}
	g.fresh = g.fresh[:0]
	return false
}

// pass runs one stabilization pass: it seeds the height queue with
// staged variables, fresh cells, and carryover from an aborted pass,
// then recomputes in height order until the queue empties.
func (g *Graph) pass() (err error) {
	g.npass++
	pass := g.npass
	g.inPass = true
	defer func() { g.inPass = false }()
	g.total.Passes++
	g.last.Passes++

	vars := g.vars
	g.vars = nil
	for _, n := range vars {
		if n.dead {
			continue
		}
		n.hasPending = false
		g.queue.enqueue(n)
	}
	fresh := g.fresh
	g.fresh = nil
	for _, n := range fresh {
		if !n.dead && !n.valid {
			g.enqueueClosure(n)
		}
	}
	carry := g.carry
	g.carry = nil
	for _, n := range carry {
		if !n.dead {
			g.queue.enqueue(n)
		}
	}

	for {
		n := g.queue.dequeue()
		if n == nil {
			return nil
		}
		if err := g.process(n, pass); err != nil {
			// Salvage the remaining ready set so the next
			// Stabilize call can resume; values updated earlier
			// in this pass are deliberately kept.
			g.carry = append(g.carry, n)
			g.carry = append(g.carry, g.queue.drain()...)
			return err
		}
	}
}

// process recomputes a single node, converting panics raised by
// user-supplied functions into Eval errors (and passing through
// engine *errors.Error panics, e.g. contract violations).
func (g *Graph) process(n *Node, pass int64) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(*errors.Error); ok {
				err = e
			} else {
				err = errors.E("recompute", n.digest, errors.Eval,
					errors.Errorf("panic: %v", p))
			}
		}
	}()
	var new values.T
	switch n.op {
	case OpVar, OpConst:
		new = n.pending
	case OpMap:
		args := make([]values.T, len(n.deps))
		for i, id := range n.deps {
			dep := g.node(id)
			if dep == nil {
				panic(errors.E("recompute", n.digest, errors.Fatal,
					errors.New("dependency reclaimed while referenced")))
			}
			if !dep.valid {
				// A fresh dependency not yet computed this pass;
				// wait for it.
				g.enqueueClosure(dep)
				g.requeue(n)
				return nil
			}
			args[i] = dep.value
		}
		new = n.fn(args)
	case OpBind:
		var requeued bool
		new, requeued = g.recomputeBind(n, pass)
		if requeued {
			return nil
		}
	case OpExpert:
		var requeued bool
		new, requeued = g.recomputeExpert(n, pass)
		if requeued {
			return nil
		}
	default:
		panic(errors.E("recompute", n.digest, errors.Fatal,
			errors.Errorf("unknown op %d", n.op)))
	}
	g.finish(n, pass, new)
	return nil
}

// finish installs a freshly computed value, applies the cutoff, and
// propagates dirtiness to dependents when the value changed. The new
// value replaces the old one even when the cutoff holds; only
// propagation stops.
func (g *Graph) finish(n *Node, pass int64, new values.T) {
	old, wasValid := n.value, n.valid
	n.value = new
	n.valid = true
	n.recomputedAt = pass
	g.total.Recomputed++
	g.last.Recomputed++
	if wasValid && n.cutoffHolds(old, new) {
		g.total.Cutoffs++
		g.last.Cutoffs++
		return
	}
	n.changedAt = pass
	g.total.Changed++
	g.last.Changed++
	for _, id := range n.dependents {
		if d := g.node(id); d != nil {
			g.queue.enqueue(d)
		}
	}
}

// requeue re-enqueues a node that was dequeued but could not finish,
// typically because its height was raised or a fresh dependency must
// compute first.
func (g *Graph) requeue(n *Node) {
	g.queue.enqueue(n)
}

// enqueueClosure enqueues n and, transitively, every not-yet-valid
// dependency below it, so that a freshly built subgraph computes
// bottom-up within the current pass.
func (g *Graph) enqueueClosure(n *Node) {
	if n == nil || n.dead || n.valid || n.inQueue {
		return
	}
	for _, id := range n.deps {
		g.enqueueClosure(g.node(id))
	}
	g.queue.enqueue(n)
}

// raiseHeight raises n's height to at least h, reseating it in the
// ready queue if necessary and propagating the increase to its
// dependents: a bounded propagate-and-reseat walk, not a pass through
// the general scheduler.
func (g *Graph) raiseHeight(n *Node, h int) {
	if h <= n.height {
		return
	}
	if h > g.Config.MaxHeight {
		panic(errors.E("raiseheight", n.digest, errors.Exhausted,
			errors.Errorf("height %d exceeds maximum %d", h, g.Config.MaxHeight)))
	}
	n.height = h
	g.total.HeightFixups++
	g.last.HeightFixups++
	if n.inQueue && n.queuedAt < h {
		// Reseat: the entry at the old height goes stale.
		g.queue.enqueue(n)
	}
	for _, id := range n.dependents {
		if d := g.node(id); d != nil && d.height <= h {
			g.raiseHeight(d, h+1)
		}
	}
}
