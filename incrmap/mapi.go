// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/kmap"
)

// Mapi creates a cell holding f applied to every element of the
// collection held by c. The transform is not incremental: any change
// to the collection re-runs f for every element, so Mapi is
// appropriate only when f is cheap. For expensive per-element
// computations, use MapiIncr.
func Mapi[K, V, W any](c incr.Cell[kmap.Map[K, V]], f func(K, V) W) incr.Cell[kmap.Map[K, W]] {
	return incr.Map(c, func(m kmap.Map[K, V]) kmap.Map[K, W] {
		out := kmap.NewFunc[K, W](m.Comparator())
		m.Range(func(k K, v V) bool {
			out = out.Set(k, f(k, v))
			return true
		})
		return out
	}).Named("mapi")
}
