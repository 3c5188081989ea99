// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"fmt"
	"testing"

	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/kmap"
)

func TestMerge(t *testing.T) {
	g := incr.New(incr.GraphConfig{})
	l := incr.NewVar(g, kmap.Of(map[int]string{1: "a", 2: "b"}))
	r := incr.NewVar(g, kmap.Of(map[int]int{2: 20, 3: 30}))
	merged := Merge(l.Cell, r.Cell, func(k int, e MergeElem[string, int]) string {
		switch e.Tag {
		case LeftOnly:
			return fmt.Sprintf("l:%s", e.Left)
		case RightOnly:
			return fmt.Sprintf("r:%d", e.Right)
		default:
			return fmt.Sprintf("b:%s/%d", e.Left, e.Right)
		}
	})
	o := incr.Observe(merged)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	for k, want := range map[int]string{1: "l:a", 2: "b:b/20", 3: "r:30"} {
		if s, ok := got.Get(k); !ok || s != want {
			t.Errorf("key %d: got %q, want %q", k, s, want)
		}
	}
	// Key 1 gains a right side; key 3 loses its only side.
	r.Set(kmap.Of(map[int]int{1: 10, 2: 20}))
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	for k, want := range map[int]string{1: "b:a/10", 2: "b:b/20"} {
		if s, ok := got.Get(k); !ok || s != want {
			t.Errorf("key %d: got %q, want %q", k, s, want)
		}
	}
	if got.Contains(3) {
		t.Error("key present in neither side survived the merge")
	}
}

// A change confined to one side re-merges only the affected keys.
func TestMergeIncremental(t *testing.T) {
	g := incr.New(incr.GraphConfig{})
	l := incr.NewVar(g, kmap.Of(map[int]int{1: 1, 2: 2, 3: 3}))
	r := incr.NewVar(g, kmap.Of(map[int]int{2: 20, 3: 30, 4: 40}))
	var calls int
	merged := Merge(l.Cell, r.Cell, func(k int, e MergeElem[int, int]) int {
		calls++
		return e.Left + e.Right
	})
	o := incr.Observe(merged)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	calls = 0
	l.Set(kmap.Of(map[int]int{1: 100, 2: 2, 3: 3}))
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	if got, want := calls, 1; got != want {
		t.Errorf("got %v merge calls, want %v", got, want)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := got.Get(1); x != 100 {
		t.Errorf("got %v, want 100", x)
	}
}
