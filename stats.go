// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

import "fmt"

// Stats summarizes scheduler activity: cells created and reclaimed,
// recomputations performed, how many produced changed values, how many
// were cut off, bind rebinds, and height fixups. Counters are
// maintained both cumulatively and per Stabilize call.
type Stats struct {
	Created      int64 // cells created
	Reclaimed    int64 // cells reclaimed
	Recomputed   int64 // recomputations performed
	Changed      int64 // recomputations that produced a changed value
	Cutoffs      int64 // recomputations stopped by a cutoff predicate
	Rebinds      int64 // bind right-hand subgraph swaps
	HeightFixups int64 // height raises during rebinds and expert edits
	Passes       int64 // stabilization passes run
}

// Add adds the counters of s2 into s.
func (s *Stats) Add(s2 Stats) {
	s.Created += s2.Created
	s.Reclaimed += s2.Reclaimed
	s.Recomputed += s2.Recomputed
	s.Changed += s2.Changed
	s.Cutoffs += s2.Cutoffs
	s.Rebinds += s2.Rebinds
	s.HeightFixups += s2.HeightFixups
	s.Passes += s2.Passes
}

// String renders the stats in a compact single-line form suitable for
// logs and status lines.
func (s Stats) String() string {
	return fmt.Sprintf(
		"created=%d reclaimed=%d recomputed=%d changed=%d cutoffs=%d rebinds=%d fixups=%d passes=%d",
		s.Created, s.Reclaimed, s.Recomputed, s.Changed,
		s.Cutoffs, s.Rebinds, s.HeightFixups, s.Passes)
}

// Stats returns cumulative scheduler statistics for the graph.
func (g *Graph) Stats() Stats {
	return g.total
}

// LastStats returns the statistics of the most recent Stabilize call.
func (g *Graph) LastStats() Stats {
	return g.last
}
