// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"strings"
	"testing"

	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/kmap"
)

func TestFilterMapi(t *testing.T) {
	g := incr.New(incr.GraphConfig{})
	v := incr.NewVar(g, kmap.Of(map[string]int{"a": 1, "b": 2, "c": 3}))
	evens := FilterMapi(v.Cell, func(k string, n int) (string, bool) {
		if n%2 != 0 {
			return "", false
		}
		return strings.ToUpper(k), true
	})
	o := incr.Observe(evens)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 {
		t.Fatalf("got %v entries, want 1", got.Len())
	}
	if s, _ := got.Get("b"); s != "B" {
		t.Errorf("got %q, want %q", s, "B")
	}
	// a flips in, b flips out, c is removed entirely.
	v.Set(kmap.Of(map[string]int{"a": 4, "b": 5}))
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 {
		t.Fatalf("got %v entries, want 1", got.Len())
	}
	if s, _ := got.Get("a"); s != "A" {
		t.Errorf("got %q, want %q", s, "A")
	}
	if got.Contains("b") || got.Contains("c") {
		t.Error("filtered-out keys survived")
	}
}

func TestMapi(t *testing.T) {
	g := incr.New(incr.GraphConfig{})
	v := incr.NewVar(g, kmap.Of(map[string]int{"x": 1, "y": 2}))
	squared := Mapi(v.Cell, func(_ string, n int) int { return n * n })
	o := incr.Observe(squared)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]int{"x": 1, "y": 4} {
		if n, _ := got.Get(k); n != want {
			t.Errorf("key %s: got %v, want %v", k, n, want)
		}
	}
	v.Set(kmap.Of(map[string]int{"x": 3, "y": 2}))
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := got.Get("x"); n != 9 {
		t.Errorf("got %v, want 9", n)
	}
}
