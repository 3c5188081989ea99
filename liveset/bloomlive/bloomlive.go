// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bloomlive

import (
	"bytes"

	"github.com/grailbio/base/digest"
	"github.com/willf/bloom"
)

// T implements a liveset.Liveset using a concrete bloom filter. The
// bloom filter stores each digest according to its bytewise
// representation. False positives keep a dead memo entry alive until
// a later prune; they never resurrect a reclaimed cell.
type T struct {
	*bloom.BloomFilter
	buf bytes.Buffer
}

// New creates a new T from a bloom filter.
func New(b *bloom.BloomFilter) *T {
	return &T{BloomFilter: b}
}

// NewEstimate creates a new T sized for n entries at a one-in-a-
// thousand false positive rate.
func NewEstimate(n uint) *T {
	return New(bloom.NewWithEstimates(n, 1e-3))
}

// Add inserts the digest d into the set. Add is not safe to call
// concurrently.
func (b *T) Add(d digest.Digest) {
	b.buf.Reset()
	if _, err := digest.WriteDigest(&b.buf, d); err != nil {
		panic("failed to write digest " + d.String() + ": " + err.Error())
	}
	b.BloomFilter.Add(b.buf.Bytes())
}

// Contains tells whether the digest d is definitely in the set.
// Contains is not safe to call concurrently.
func (b *T) Contains(d digest.Digest) bool {
	b.buf.Reset()
	if _, err := digest.WriteDigest(&b.buf, d); err != nil {
		panic("failed to write digest " + d.String() + ": " + err.Error())
	}
	return b.BloomFilter.Test(b.buf.Bytes())
}
