// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// WriteDot writes the graph's current dependency structure to w in
// GraphViz dot format, for debugging graph shapes and bind behavior.
// Edges point in dataflow direction (dependency to dependent); the
// edge from a bind to its forwarded right-hand cell is dashed.
func (g *Graph) WriteDot(w io.Writer) error {
	dg := simple.NewDirectedGraph()
	dn := make(map[int]dotNode)
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		d := dotNode{n}
		dn[n.id] = d
		dg.AddNode(d)
	}
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, id := range n.deps {
			dep, ok := dn[id]
			if !ok {
				continue
			}
			var attrs []encoding.Attribute
			if n.op == OpBind && id == n.rhs {
				attrs = []encoding.Attribute{{Key: "style", Value: "dashed"}}
			}
			dg.SetEdge(dotEdge{from: dep, to: dn[n.id], attrs: attrs})
		}
	}
	b, err := dot.Marshal(dg, fmt.Sprintf("incr_%s", g.id), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

type dotNode struct {
	n *Node
}

func (d dotNode) ID() int64 {
	return d.n.seq
}

func (d dotNode) DOTID() string {
	return fmt.Sprintf("n%d", d.n.seq)
}

func (d dotNode) Attributes() []encoding.Attribute {
	label := d.n.op.String()
	if d.n.ident != "" {
		label += " " + d.n.ident
	}
	label += fmt.Sprintf("\nh=%d %s", d.n.height, d.n.digest.Short())
	return []encoding.Attribute{{Key: "label", Value: label}}
}

type dotEdge struct {
	from, to graph.Node
	attrs    []encoding.Attribute
}

func (e dotEdge) From() graph.Node {
	return e.from
}

func (e dotEdge) To() graph.Node {
	return e.to
}

func (e dotEdge) ReversedEdge() graph.Edge {
	return dotEdge{from: e.to, to: e.from, attrs: e.attrs}
}

func (e dotEdge) Attributes() []encoding.Attribute {
	return e.attrs
}
