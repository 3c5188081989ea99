// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package values

import "testing"

func TestEqual(t *testing.T) {
	for _, c := range []struct {
		v, w T
		want bool
	}{
		{1, 1, true},
		{1, 2, false},
		{1, int64(1), false},
		{"a", "a", true},
		{nil, nil, true},
		{nil, 0, false},
		{[]int{1, 2}, []int{1, 2}, true},
		{[]int{1, 2}, []int{2, 1}, false},
		{map[string]int{"x": 1}, map[string]int{"x": 1}, true},
	} {
		if got, want := Equal(c.v, c.w), c.want; got != want {
			t.Errorf("Equal(%v, %v): got %v, want %v", c.v, c.w, got, want)
		}
	}
}

func TestSame(t *testing.T) {
	s := []int{1, 2}
	for _, c := range []struct {
		v, w T
		want bool
	}{
		{1, 1, true},
		{"a", "b", false},
		{s, s, false}, // non-comparable values are never the same
		{[]int{1}, []int{1}, false},
		{nil, nil, true},
	} {
		if got, want := Same(c.v, c.w), c.want; got != want {
			t.Errorf("Same(%v, %v): got %v, want %v", c.v, c.w, got, want)
		}
	}
}
