// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package incrmap provides incremental computation over keyed
// collections: folds, per-element transforms, filtering, merging, and
// grouping of kmap.Map cells whose recomputation cost is proportional
// to the number of changed keys rather than to collection size.
//
// The layer is built entirely on the public incr API: folds are map
// cells with internal diffing state, and the incremental per-element
// transform (MapiIncr) is an expert cell maintaining one child
// subgraph per key.
package incrmap

import (
	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/kmap"
	"github.com/incrlabs/incr/values"
)

// FoldOpts configures an unordered fold. Add and Remove are required;
// Update and Eq are optional.
type FoldOpts[K, V, A any] struct {
	// Add folds a key newly present in the collection into the
	// accumulator.
	Add func(k K, v V, acc A) A

	// Remove folds a key that disappeared from the collection out of
	// the accumulator. It is called only for keys whose addition this
	// fold previously observed.
	Remove func(k K, v V, acc A) A

	// Update, if non-nil, handles a key present in both snapshots with
	// a changed value. When nil, a change is folded as Remove of the
	// old value followed by Add of the new one.
	Update func(k K, old, new V, acc A) A

	// Eq compares element values while diffing collection snapshots.
	// Defaults to values.Equal.
	Eq func(V, V) bool
}

// folder carries an unordered fold's state across recomputes: the
// previous collection snapshot, the accumulator, and the set of keys
// whose addition the fold has observed.
type folder[K, V, A any] struct {
	opts    FoldOpts[K, V, A]
	eq      func(V, V) bool
	prev    kmap.Map[K, V]
	tracked kmap.Map[K, bool]
	acc     A
}

// apply folds the differences between the previous snapshot and m
// into the accumulator and returns it.
func (f *folder[K, V, A]) apply(m kmap.Map[K, V]) A {
	if f.tracked.Comparator() == nil {
		f.tracked = kmap.NewFunc[K, bool](m.Comparator())
	}
	kmap.SymmetricDiff(f.prev, m, f.eq, func(d kmap.Diff[K, V]) bool {
		switch d.Kind {
		case kmap.Added:
			f.acc = f.opts.Add(d.Key, d.New, f.acc)
			f.tracked = f.tracked.Set(d.Key, true)
		case kmap.Removed:
			f.remove(d.Key, d.Old)
			f.tracked = f.tracked.Remove(d.Key)
		case kmap.Changed:
			if f.opts.Update != nil {
				f.acc = f.opts.Update(d.Key, d.Old, d.New, f.acc)
			} else {
				// Same-key ordering: the removal of the old value is
				// observed before the re-addition of the new one.
				f.remove(d.Key, d.Old)
				f.acc = f.opts.Add(d.Key, d.New, f.acc)
			}
		}
		return true
	})
	f.prev = m
	return f.acc
}

func (f *folder[K, V, A]) remove(k K, old V) {
	if !f.tracked.Contains(k) {
		// This fold never observed the key's addition; calling Remove
		// for it would hand the user an element they cannot have
		// accounted for.
		panic(errors.E("fold", errors.Contract,
			errors.New("removal of a key whose addition was never observed")))
	}
	f.acc = f.opts.Remove(k, old, f.acc)
}

// UnorderedFold creates a cell maintaining an accumulator over the
// keyed collection held by c. Starting from init, each stabilization
// folds only the keys that changed since the previous one: Add for
// appearing keys, Remove for disappearing keys, and Update (or
// Remove-then-Add) for keys whose value changed. The order of calls
// across distinct keys is unspecified.
//
// Removal of a key whose addition the fold never observed is a
// contract violation and fails the enclosing stabilization.
func UnorderedFold[K, V, A any](c incr.Cell[kmap.Map[K, V]], init A, opts FoldOpts[K, V, A]) incr.Cell[A] {
	eq := opts.Eq
	if eq == nil {
		eq = func(a, b V) bool { return values.Equal(a, b) }
	}
	f := &folder[K, V, A]{opts: opts, eq: eq, acc: init}
	return incr.Map(c, f.apply).Named("fold")
}
