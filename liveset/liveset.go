// Package liveset defines approximate liveness judgements over cell
// identity digests. Livesets are consulted when pruning weak
// memoization tables after stabilization: an entry whose cell digest
// is not contained in the liveset refers to a reclaimed cell and may
// be dropped.
package liveset

import (
	"github.com/grailbio/base/digest"
)

// A Liveset contains a possibly approximate judgement about live
// cells.
type Liveset interface {
	// Contains returns true if the given cell definitely is in the
	// set; it may rarely return true when the cell is not.
	Contains(digest.Digest) bool
}
