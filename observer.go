// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"github.com/incrlabs/incr/errors"
)

// An Observer pins a cell and provides access to its stabilized
// value. Observation is the only supported way to read values out of
// a graph: a cell with no observers and no dependents is subject to
// reclamation, and reading an unstabilized or unobserved cell is a
// contract violation.
type Observer[T any] struct {
	n    *Node
	dead bool
}

// Observe pins c, keeping it (and its dependency closure) alive until
// Unobserve is called, and returns an observer for reading its value.
func Observe[T any](c Cell[T]) *Observer[T] {
	n := c.node
	if n.dead {
		panic(errors.E("observe", n.digest, errors.Contract,
			errors.New("cell was reclaimed")))
	}
	n.refs++
	return &Observer[T]{n: n}
}

// Value returns the observed cell's value as of the most recent
// successful stabilization. It returns a Contract error if the
// observer has been unobserved or the cell has not yet been
// stabilized.
func (o *Observer[T]) Value() (T, error) {
	var zero T
	if o.dead {
		return zero, errors.E("value", o.n.digest, errors.Contract,
			errors.New("observer is unobserved"))
	}
	if !o.n.valid {
		return zero, errors.E("value", o.n.digest, errors.Contract,
			errors.New("cell not yet stabilized"))
	}
	return o.n.value.(T), nil
}

// Node returns the observed cell's node.
func (o *Observer[T]) Node() *Node {
	return o.n
}

// Unobserve releases the observer's pin. If nothing else references
// the cell, it and the subgraph it alone kept alive are reclaimed.
// Unobserving twice is a no-op.
func (o *Observer[T]) Unobserve() {
	if o.dead {
		return
	}
	o.dead = true
	o.n.g.unpin(o.n)
}
