// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package incr implements an incremental (self-adjusting) computation
// engine: a program declares a computation as a graph of cells, and
// after changing inputs, re-derives only the parts of the result
// affected by the change rather than recomputing from scratch.
//
// Cells are created by combinators over other cells (Map, Map2, ...,
// Bind); inputs are injected through Vars; results are read through
// Observers after a call to (*Graph).Stabilize, which brings every
// cell up to date in topological height order, stopping propagation
// at cells whose cutoff predicate judges the freshly computed value
// unchanged.
//
// A Graph and everything in it is confined to a single goroutine:
// none of the types in this package are safe for concurrent use
// without external mutual exclusion. Stabilize runs synchronously to
// completion or fails; blocking work belongs outside the graph, with
// results injected through Var.Set followed by another Stabilize.
package incr
