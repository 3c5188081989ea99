// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package kmap implements an immutable, persistent keyed map used as
// the collection value type of the incremental-map layer. Maps are
// weight-balanced binary trees; updates share structure with the map
// they were derived from, and SymmetricDiff exploits that sharing so
// that diffing two related maps costs proportionally to the number of
// changed keys, not to the size of the maps.
package kmap

import "cmp"

// Weight-balance parameters in the manner of Adams' balanced trees.
const (
	delta = 3
	ratio = 2
)

type node[K, V any] struct {
	key         K
	val         V
	size        int
	left, right *node[K, V]
}

// A Map is an immutable keyed collection. The zero Map is not usable;
// maps must be created by New, NewFunc, or Of. All update operations
// return a new Map, leaving the receiver intact.
type Map[K, V any] struct {
	compare func(K, K) int
	root    *node[K, V]
}

// New returns an empty map over an ordered key type.
func New[K cmp.Ordered, V any]() Map[K, V] {
	return NewFunc[K, V](cmp.Compare[K])
}

// NewFunc returns an empty map using the provided key comparison
// function, which must define a total order.
func NewFunc[K, V any](compare func(K, K) int) Map[K, V] {
	return Map[K, V]{compare: compare}
}

// Of returns a map over an ordered key type holding the entries of
// the provided Go map.
func Of[K cmp.Ordered, V any](entries map[K]V) Map[K, V] {
	m := New[K, V]()
	for k, v := range entries {
		m = m.Set(k, v)
	}
	return m
}

// Len returns the number of entries in the map.
func (m Map[K, V]) Len() int {
	return size(m.root)
}

// Comparator returns the map's key comparison function; nil for the
// zero Map.
func (m Map[K, V]) Comparator() func(K, K) int {
	return m.compare
}

// Get returns the value stored under key k, if any.
func (m Map[K, V]) Get(k K) (V, bool) {
	n := m.root
	for n != nil {
		switch c := m.compare(k, n.key); {
		case c < 0:
			n = n.left
		case c > 0:
			n = n.right
		default:
			return n.val, true
		}
	}
	var zero V
	return zero, false
}

// Contains tells whether the map holds an entry under key k.
func (m Map[K, V]) Contains(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Set returns a map with v stored under k, replacing any existing
// entry.
func (m Map[K, V]) Set(k K, v V) Map[K, V] {
	return Map[K, V]{m.compare, insert(m.compare, m.root, k, v)}
}

// Remove returns a map without an entry under k. If k is not present,
// the original map is returned unchanged.
func (m Map[K, V]) Remove(k K) Map[K, V] {
	if !m.Contains(k) {
		return m
	}
	return Map[K, V]{m.compare, remove(m.compare, m.root, k)}
}

// Range calls fn for each entry in ascending key order, stopping early
// if fn returns false.
func (m Map[K, V]) Range(fn func(K, V) bool) {
	rangeNode(m.root, fn)
}

// Keys returns the map's keys in ascending order.
func (m Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Equal tells whether maps m and n hold the same entries, comparing
// values with eq.
func (m Map[K, V]) Equal(n Map[K, V], eq func(V, V) bool) bool {
	if m.Len() != n.Len() {
		return false
	}
	same := true
	SymmetricDiff(m, n, eq, func(Diff[K, V]) bool {
		same = false
		return false
	})
	return same
}

func size[K, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func mk[K, V any](k K, v V, l, r *node[K, V]) *node[K, V] {
	return &node[K, V]{key: k, val: v, size: 1 + size(l) + size(r), left: l, right: r}
}

func singleLeft[K, V any](k K, v V, l, r *node[K, V]) *node[K, V] {
	return mk(r.key, r.val, mk(k, v, l, r.left), r.right)
}

func singleRight[K, V any](k K, v V, l, r *node[K, V]) *node[K, V] {
	return mk(l.key, l.val, l.left, mk(k, v, l.right, r))
}

func doubleLeft[K, V any](k K, v V, l, r *node[K, V]) *node[K, V] {
	rl := r.left
	return mk(rl.key, rl.val, mk(k, v, l, rl.left), mk(r.key, r.val, rl.right, r.right))
}

func doubleRight[K, V any](k K, v V, l, r *node[K, V]) *node[K, V] {
	lr := l.right
	return mk(lr.key, lr.val, mk(l.key, l.val, l.left, lr.left), mk(k, v, lr.right, r))
}

// balance restores the weight invariant after a single insertion into
// or deletion from one of the subtrees.
func balance[K, V any](k K, v V, l, r *node[K, V]) *node[K, V] {
	ln, rn := size(l), size(r)
	switch {
	case ln+rn <= 1:
		return mk(k, v, l, r)
	case rn > delta*ln:
		if size(r.left) < ratio*size(r.right) {
			return singleLeft(k, v, l, r)
		}
		return doubleLeft(k, v, l, r)
	case ln > delta*rn:
		if size(l.right) < ratio*size(l.left) {
			return singleRight(k, v, l, r)
		}
		return doubleRight(k, v, l, r)
	default:
		return mk(k, v, l, r)
	}
}

func insert[K, V any](compare func(K, K) int, n *node[K, V], k K, v V) *node[K, V] {
	if n == nil {
		return mk(k, v, nil, nil)
	}
	switch c := compare(k, n.key); {
	case c < 0:
		return balance(n.key, n.val, insert(compare, n.left, k, v), n.right)
	case c > 0:
		return balance(n.key, n.val, n.left, insert(compare, n.right, k, v))
	default:
		return &node[K, V]{key: k, val: v, size: n.size, left: n.left, right: n.right}
	}
}

func remove[K, V any](compare func(K, K) int, n *node[K, V], k K) *node[K, V] {
	if n == nil {
		return nil
	}
	switch c := compare(k, n.key); {
	case c < 0:
		return balance(n.key, n.val, remove(compare, n.left, k), n.right)
	case c > 0:
		return balance(n.key, n.val, n.left, remove(compare, n.right, k))
	default:
		return glue(n.left, n.right)
	}
}

// glue joins two subtrees whose keys are already ordered relative to
// each other.
func glue[K, V any](l, r *node[K, V]) *node[K, V] {
	switch {
	case l == nil:
		return r
	case r == nil:
		return l
	case size(l) > size(r):
		k, v, l2 := removeMax(l)
		return balance(k, v, l2, r)
	default:
		k, v, r2 := removeMin(r)
		return balance(k, v, l, r2)
	}
}

func removeMin[K, V any](n *node[K, V]) (K, V, *node[K, V]) {
	if n.left == nil {
		return n.key, n.val, n.right
	}
	k, v, l := removeMin(n.left)
	return k, v, balance(n.key, n.val, l, n.right)
}

func removeMax[K, V any](n *node[K, V]) (K, V, *node[K, V]) {
	if n.right == nil {
		return n.key, n.val, n.left
	}
	k, v, r := removeMax(n.right)
	return k, v, balance(n.key, n.val, n.left, r)
}

func rangeNode[K, V any](n *node[K, V], fn func(K, V) bool) bool {
	if n == nil {
		return true
	}
	return rangeNode(n.left, fn) && fn(n.key, n.val) && rangeNode(n.right, fn)
}
