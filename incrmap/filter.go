// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"cmp"

	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/kmap"
)

// FilterMapi creates a cell holding f applied per-key to the
// collection held by c, keeping only the entries for which f reports
// ok. The output is maintained incrementally through an unordered
// fold: only changed keys are re-examined.
func FilterMapi[K cmp.Ordered, V, W any](c incr.Cell[kmap.Map[K, V]], f func(K, V) (W, bool)) incr.Cell[kmap.Map[K, W]] {
	return UnorderedFold(c, kmap.New[K, W](), FoldOpts[K, V, kmap.Map[K, W]]{
		Add: func(k K, v V, acc kmap.Map[K, W]) kmap.Map[K, W] {
			if w, ok := f(k, v); ok {
				return acc.Set(k, w)
			}
			return acc
		},
		Remove: func(k K, v V, acc kmap.Map[K, W]) kmap.Map[K, W] {
			// The key may have been filtered out on addition; Remove
			// on an absent key is a no-op.
			return acc.Remove(k)
		},
	}).Named("filtermapi")
}
