// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteDot(t *testing.T) {
	g := New(GraphConfig{})
	v := NewVar(g, 1)
	v.Cell.Named("input")
	c := Map(v.Cell, func(x int) int { return x + 1 })
	o := Observe(c)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := g.WriteDot(&b); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{"digraph", "->", "input", "var", "map"} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteDotBindEdge(t *testing.T) {
	g := New(GraphConfig{})
	pick := NewVar(g, true)
	x := NewVar(g, 1)
	ox := Observe(x.Cell)
	defer ox.Unobserve()
	b := Bind(pick.Cell, func(bool) Cell[int] { return x.Cell })
	o := Observe(b)
	defer o.Unobserve()
	if err := g.Stabilize(); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := g.WriteDot(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "dashed") {
		t.Errorf("dot output missing dashed bind edge:\n%s", buf.String())
	}
}
