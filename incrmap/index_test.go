// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incrmap

import (
	"testing"

	"github.com/incrlabs/incr"
	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/kmap"
)

func TestIndexBy(t *testing.T) {
	g := incr.New(incr.GraphConfig{})
	v := incr.NewVar(g, kmap.Of(map[string]int{
		"apple": 1, "avocado": 2, "banana": 3,
	}))
	grouped := IndexBy(v.Cell, func(k string, _ int) byte { return k[0] })
	o := incr.Observe(grouped)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 2; got.Len() != want {
		t.Fatalf("got %v groups, want %v", got.Len(), want)
	}
	a, ok := got.Get('a')
	if !ok || a.Len() != 2 {
		t.Errorf("got group a %v, want 2 entries", a.Len())
	}
	// Renaming moves the entry between groups; the emptied group
	// disappears.
	v.Set(kmap.Of(map[string]int{
		"apple": 1, "avocado": 2, "cherry": 3,
	}))
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Get('b'); ok {
		t.Error("empty group b not dropped")
	}
	c, ok := got.Get('c')
	if !ok || c.Len() != 1 {
		t.Errorf("got group c %v entries, want 1", c.Len())
	}
	if n, _ := c.Get("cherry"); n != 3 {
		t.Errorf("got cherry=%v, want 3", n)
	}
}

func TestIndexByValueChange(t *testing.T) {
	g := incr.New(incr.GraphConfig{})
	v := incr.NewVar(g, kmap.Of(map[int]int{1: 10, 2: 25, 3: 30}))
	// Group by magnitude decade; changing a value can move its key.
	grouped := IndexBy(v.Cell, func(_ int, n int) int { return n / 10 })
	o := incr.Observe(grouped)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	v.Set(kmap.Of(map[int]int{1: 10, 2: 25, 3: 21}))
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Get(3); ok {
		t.Error("empty group 3 not dropped")
	}
	twenties, ok := got.Get(2)
	if !ok || twenties.Len() != 2 {
		t.Fatalf("got group 2 with %v entries, want 2", twenties.Len())
	}
	if n, _ := twenties.Get(3); n != 21 {
		t.Errorf("got key 3 = %v, want 21", n)
	}
}

// An index function that does not map a (key, value) pair
// deterministically breaks the grouping's add/remove discipline and
// surfaces as a contract violation, not silent corruption.
func TestIndexByInconsistentIndex(t *testing.T) {
	g := incr.New(incr.GraphConfig{})
	v := incr.NewVar(g, kmap.Of(map[int]int{1: 1}))
	var calls int
	grouped := IndexBy(v.Cell, func(int, int) int {
		calls++
		return calls // a different group every call
	})
	o := incr.Observe(grouped)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	v.Set(kmap.Of(map[int]int{}))
	err := g.Stabilize()
	if err == nil {
		t.Fatal("expected stabilize error")
	}
	if got, want := errors.Recover(err).Kind, errors.Contract; got != want {
		t.Errorf("got kind %v, want %v", got, want)
	}
	if errors.Retryable(err) {
		t.Error("contract violation reported as retryable")
	}
}
