// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package kmap

// DiffKind classifies a single key-level difference between two maps.
type DiffKind int

const (
	// Added indicates the key is present only in the new map.
	Added DiffKind = 1 + iota
	// Removed indicates the key is present only in the old map.
	Removed
	// Changed indicates the key is present in both maps with
	// unequal values.
	Changed
)

func (k DiffKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	default:
		return "broken"
	}
}

// Diff describes one key-level difference. Old is set for Removed and
// Changed entries; New is set for Added and Changed entries.
type Diff[K, V any] struct {
	Key  K
	Kind DiffKind
	Old  V
	New  V
}

// enum is an in-order enumeration of a tree: the current entry, the
// entry's unvisited right subtree, and the remainder of the
// enumeration.
type enum[K, V any] struct {
	key   K
	val   V
	right *node[K, V]
	rest  *enum[K, V]
}

func push[K, V any](n *node[K, V], e *enum[K, V]) *enum[K, V] {
	for n != nil {
		e = &enum[K, V]{key: n.key, val: n.val, right: n.right, rest: e}
		n = n.left
	}
	return e
}

// SymmetricDiff computes the key-level differences between old and
// new, calling emit for each added, removed, or changed key, in
// ascending key order. Values present in both maps are compared with
// eq. Subtrees shared between the two maps (by pointer) are skipped
// without inspection, so the cost is proportional to the number of
// differing keys when new was derived from old. Emit may return false
// to stop early.
//
// Both maps must have been created with the same comparison function.
func SymmetricDiff[K, V any](old, new Map[K, V], eq func(V, V) bool, emit func(Diff[K, V]) bool) {
	if old.root == new.root {
		return
	}
	compare := old.compare
	if compare == nil {
		compare = new.compare
	}
	var zero V
	ea, eb := push(old.root, nil), push(new.root, nil)
	for ea != nil && eb != nil {
		switch c := compare(ea.key, eb.key); {
		case c < 0:
			if !emit(Diff[K, V]{Key: ea.key, Kind: Removed, Old: ea.val, New: zero}) {
				return
			}
			ea = push(ea.right, ea.rest)
		case c > 0:
			if !emit(Diff[K, V]{Key: eb.key, Kind: Added, Old: zero, New: eb.val}) {
				return
			}
			eb = push(eb.right, eb.rest)
		default:
			if !eq(ea.val, eb.val) {
				if !emit(Diff[K, V]{Key: ea.key, Kind: Changed, Old: ea.val, New: eb.val}) {
					return
				}
			}
			if ea.right == eb.right {
				// Identical subtrees: skip without inspection.
				ea, eb = ea.rest, eb.rest
			} else {
				ea = push(ea.right, ea.rest)
				eb = push(eb.right, eb.rest)
			}
		}
	}
	for ea != nil {
		if !emit(Diff[K, V]{Key: ea.key, Kind: Removed, Old: ea.val, New: zero}) {
			return
		}
		ea = push(ea.right, ea.rest)
	}
	for eb != nil {
		if !emit(Diff[K, V]{Key: eb.key, Kind: Added, Old: zero, New: eb.val}) {
			return
		}
		eb = push(eb.right, eb.rest)
	}
}
