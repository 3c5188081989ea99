// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"cmp"

	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/kmap"
	"github.com/incrlabs/incr/values"
)

// MergeTag classifies a key's presence across the two sides of a
// merge.
type MergeTag int

const (
	// LeftOnly indicates the key is present only in the left
	// collection.
	LeftOnly MergeTag = 1 + iota
	// RightOnly indicates the key is present only in the right
	// collection.
	RightOnly
	// Both indicates the key is present in both collections.
	Both
)

func (t MergeTag) String() string {
	switch t {
	case LeftOnly:
		return "left"
	case RightOnly:
		return "right"
	case Both:
		return "both"
	default:
		return "broken"
	}
}

// A MergeElem is the tagged per-key input to a merge function. Left
// is set for LeftOnly and Both entries; Right for RightOnly and Both.
type MergeElem[V, W any] struct {
	Tag   MergeTag
	Left  V
	Right W
}

// Merge creates a cell combining the two keyed collections held by l
// and r. For every key present in either collection, f receives the
// key's values tagged by presence (left only, right only, or both)
// and produces the output element. The output is maintained
// incrementally: only keys affected by a change on either side are
// re-merged.
func Merge[K cmp.Ordered, V, W, X any](
	l incr.Cell[kmap.Map[K, V]],
	r incr.Cell[kmap.Map[K, W]],
	f func(K, MergeElem[V, W]) X,
) incr.Cell[kmap.Map[K, X]] {
	var (
		prevL kmap.Map[K, V]
		prevR kmap.Map[K, W]
		out   = kmap.New[K, X]()
	)
	eqV := func(a, b V) bool { return values.Equal(a, b) }
	eqW := func(a, b W) bool { return values.Equal(a, b) }
	return incr.Map2(l, r, func(lm kmap.Map[K, V], rm kmap.Map[K, W]) kmap.Map[K, X] {
		remerge := func(k K) {
			lv, lok := lm.Get(k)
			rv, rok := rm.Get(k)
			switch {
			case lok && rok:
				out = out.Set(k, f(k, MergeElem[V, W]{Tag: Both, Left: lv, Right: rv}))
			case lok:
				out = out.Set(k, f(k, MergeElem[V, W]{Tag: LeftOnly, Left: lv}))
			case rok:
				out = out.Set(k, f(k, MergeElem[V, W]{Tag: RightOnly, Right: rv}))
			default:
				out = out.Remove(k)
			}
		}
		kmap.SymmetricDiff(prevL, lm, eqV, func(d kmap.Diff[K, V]) bool {
			remerge(d.Key)
			return true
		})
		kmap.SymmetricDiff(prevR, rm, eqW, func(d kmap.Diff[K, W]) bool {
			remerge(d.Key)
			return true
		})
		prevL, prevR = lm, rm
		return out
	}).Named("merge")
}
