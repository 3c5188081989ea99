// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package values defines the runtime representation of cell values in
// the incremental graph. The graph core is untyped: every cell stores
// a values.T, and the typed combinator front converts to and from
// concrete Go types at the boundary.
package values

import "reflect"

// T is the type of computation values: a cell's current value is a T.
type T interface{}

// Equal tells whether values v and w are equal. Comparable values are
// compared directly; everything else falls back to a deep comparison.
// Equal is the default cutoff predicate for all cells.
func Equal(v, w T) bool {
	if v == nil || w == nil {
		return v == w
	}
	if vt, wt := reflect.TypeOf(v), reflect.TypeOf(w); vt == wt && vt.Comparable() {
		return v == w
	}
	return reflect.DeepEqual(v, w)
}

// Same tells whether v and w are the same value by strict identity:
// comparable values must be equal under ==; non-comparable values are
// never the same. Same is a stricter predicate than Equal, appropriate
// when value identity is semantically meaningful. Note that freshly
// allocated non-comparable values are never Same, so using Same as a
// cutoff on such values disables cutoff entirely.
func Same(v, w T) bool {
	if v == nil || w == nil {
		return v == w
	}
	if vt, wt := reflect.TypeOf(v), reflect.TypeOf(w); vt == wt && vt.Comparable() {
		return v == w
	}
	return false
}
