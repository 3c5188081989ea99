// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"testing"

	"github.com/incrlabs/incr/errors"
	"github.com/incrlabs/incr/values"
)

func TestExpertSum(t *testing.T) {
	g := New(GraphConfig{})
	a := NewVar(g, 1)
	b := NewVar(g, 2)
	oa, ob := Observe(a.Cell), Observe(b.Cell)
	defer oa.Unobserve()
	defer ob.Unobserve()
	terms := make(map[*Node]int)
	e := NewExpert(g, "sum", func() values.T {
		s := 0
		for _, v := range terms {
			s += v
		}
		return s
	})
	e.AddDependency(a.Node(), func(v values.T) { terms[a.Node()] = v.(int) })
	edgeB := e.AddDependency(b.Node(), func(v values.T) { terms[b.Node()] = v.(int) })
	o := Observe(ExpertCell[int](e))
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 3; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	a.Set(10)
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 12; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	delete(terms, b.Node())
	e.RemoveDependency(edgeB)
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 10; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	// A change on the removed dependency no longer reaches the expert.
	b.Set(100)
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 10; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// Hooks deliver only changes: a dependency cut off by its predicate
// does not invoke the hook.
func TestExpertHookDelivery(t *testing.T) {
	g := New(GraphConfig{})
	v := NewVar(g, 1)
	parity := Map(v.Cell, func(x int) int { return x % 2 })
	var delivered []int
	var last int
	e := NewExpert(g, "watch", func() values.T { return last })
	e.AddDependency(parity.Node(), func(val values.T) {
		last = val.(int)
		delivered = append(delivered, last)
	})
	o := Observe(ExpertCell[int](e))
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	v.Set(3) // parity unchanged
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	v.Set(4) // parity flips
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	if got, want := len(delivered), 2; got != want {
		t.Fatalf("got %v deliveries, want %v", got, want)
	}
	if delivered[0] != 1 || delivered[1] != 0 {
		t.Errorf("got deliveries %v, want [1 0]", delivered)
	}
}

// A hook may add dependencies mid-pass; the expert recomputes again in
// the same stabilization once the new dependency has computed.
func TestExpertAddDependencyInHook(t *testing.T) {
	g := New(GraphConfig{})
	trigger := NewVar(g, 0)
	extra := NewVar(g, 50)
	oe := Observe(extra.Cell)
	defer oe.Unobserve()
	var base, bonus int
	var e *Expert
	e = NewExpert(g, "grow", func() values.T { return base + bonus })
	var added bool
	e.AddDependency(trigger.Node(), func(v values.T) {
		base = v.(int)
		if base > 0 && !added {
			added = true
			e.AddDependency(extra.Node(), func(v values.T) { bonus = v.(int) })
		}
	})
	o := Observe(ExpertCell[int](e))
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err := o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 0; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	trigger.Set(7)
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 57; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	extra.Set(100)
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	got, err = o.Value()
	if err != nil {
		t.Fatal(err)
	}
	if want := 107; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExpertRemoveEdgeTwice(t *testing.T) {
	g := New(GraphConfig{})
	v := NewVar(g, 1)
	ov := Observe(v.Cell)
	defer ov.Unobserve()
	e := NewExpert(g, "", func() values.T { return 0 })
	edge := e.AddDependency(v.Node(), nil)
	e.RemoveDependency(edge)
	defer func() {
		p := recover()
		if p == nil {
			t.Fatal("expected panic removing edge twice")
		}
		err, ok := p.(error)
		if !ok {
			t.Fatalf("panic %v is not an error", p)
		}
		if got, want := errors.Recover(err).Kind, errors.Contract; got != want {
			t.Errorf("got kind %v, want %v", got, want)
		}
	}()
	e.RemoveDependency(edge)
}
