// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"cmp"

	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/kmap"
)

// IndexBy creates a cell grouping the flat keyed collection held by c
// into a two-level collection: an outer map from derived index to the
// inner map of entries sharing that index. Grouping is maintained
// through an unordered fold, applying the same add/remove discipline
// recursively on the inner maps: a key moving between groups is
// removed from its old group (dropping the group when it empties)
// before being added to its new one.
func IndexBy[K cmp.Ordered, V any, I cmp.Ordered](c incr.Cell[kmap.Map[K, V]], index func(K, V) I) incr.Cell[kmap.Map[I, kmap.Map[K, V]]] {
	return UnorderedFold(c, kmap.New[I, kmap.Map[K, V]](), FoldOpts[K, V, kmap.Map[I, kmap.Map[K, V]]]{
		Add: func(k K, v V, acc kmap.Map[I, kmap.Map[K, V]]) kmap.Map[I, kmap.Map[K, V]] {
			i := index(k, v)
			inner, ok := acc.Get(i)
			if !ok {
				inner = kmap.New[K, V]()
			}
			return acc.Set(i, inner.Set(k, v))
		},
		Remove: func(k K, v V, acc kmap.Map[I, kmap.Map[K, V]]) kmap.Map[I, kmap.Map[K, V]] {
			i := index(k, v)
			inner, ok := acc.Get(i)
			if !ok || !inner.Contains(k) {
				// The key's group must contain it: the fold only
				// removes keys whose addition it observed, and Add
				// placed the key in the group its index derives.
				panic(errors.E("indexby", errors.Contract,
					errors.New("removal of a key absent from its group")))
			}
			inner = inner.Remove(k)
			if inner.Len() == 0 {
				return acc.Remove(i)
			}
			return acc.Set(i, inner)
		},
	}).Named("indexby")
}
