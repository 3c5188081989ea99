// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/kmap"
	"github.com/incrlabs/incr/values"
)

// mapiChild is the per-key machinery of a MapiIncr cell: a feeder
// variable carrying the key's current element value into the subgraph
// built by the user's function, and the expert edge through which the
// subgraph's result flows back.
type mapiChild[V any] struct {
	feeder incr.Var[V]
	edge   *incr.ExpertEdge
}

// MapiIncr creates a cell holding f applied per-key to the collection
// held by c, incrementally: the first time a key appears, f is called
// once with a cell carrying that key's element value, and the
// subgraph it builds is retained. A change to one key's element
// recomputes only that key's subgraph; when the key disappears, the
// subgraph is torn down and reclaimed. Adding or removing a key costs
// one subgraph build or teardown, independent of collection size.
//
// Because per-key element changes are injected as variable sets from
// inside the pass, a MapiIncr cell may cause Stabilize to run an
// additional internal pass; the call still returns a single
// consistent snapshot.
func MapiIncr[K, V, W any](c incr.Cell[kmap.Map[K, V]], f func(K, incr.Cell[V]) incr.Cell[W]) incr.Cell[kmap.Map[K, W]] {
	g := c.Node().Graph()
	st := &mapiState[K, V, W]{f: f}
	st.expert = incr.NewExpert(g, "mapi'", func() values.T {
		return st.out
	})
	st.expert.AddDependency(c.Node(), st.collectionChanged)
	return incr.Read[kmap.Map[K, W]](st.expert.Node())
}

type mapiState[K, V, W any] struct {
	f        func(K, incr.Cell[V]) incr.Cell[W]
	expert   *incr.Expert
	prev     kmap.Map[K, V]
	children kmap.Map[K, *mapiChild[V]]
	out      kmap.Map[K, W]
}

// collectionChanged diffs the new collection snapshot against the
// previous one, building a child per appearing key, tearing down the
// child of each disappearing key, and feeding changed element values
// into the surviving children's feeders.
func (st *mapiState[K, V, W]) collectionChanged(v values.T) {
	m := v.(kmap.Map[K, V])
	if st.out.Comparator() == nil {
		st.out = kmap.NewFunc[K, W](m.Comparator())
		st.children = kmap.NewFunc[K, *mapiChild[V]](m.Comparator())
	}
	g := st.expert.Node().Graph()
	eq := func(a, b V) bool { return values.Equal(a, b) }
	kmap.SymmetricDiff(st.prev, m, eq, func(d kmap.Diff[K, V]) bool {
		switch d.Kind {
		case kmap.Added:
			k := d.Key
			feeder := incr.NewVar(g, d.New)
			result := st.f(k, feeder.Cell)
			edge := st.expert.AddDependency(result.Node(), func(w values.T) {
				st.out = st.out.Set(k, w.(W))
			})
			st.children = st.children.Set(k, &mapiChild[V]{feeder: feeder, edge: edge})
		case kmap.Removed:
			ch, ok := st.children.Get(d.Key)
			if !ok {
				panic(errors.E("mapi'", errors.Contract,
					errors.New("removal of a key with no child subgraph")))
			}
			st.expert.RemoveDependency(ch.edge)
			st.children = st.children.Remove(d.Key)
			st.out = st.out.Remove(d.Key)
		case kmap.Changed:
			ch, ok := st.children.Get(d.Key)
			if !ok {
				panic(errors.E("mapi'", errors.Contract,
					errors.New("change to a key with no child subgraph")))
			}
			ch.feeder.Set(d.New)
		}
		return true
	})
	st.prev = m
}
