// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bloomlive

import (
	"crypto"
	_ "crypto/sha256"
	"fmt"
	"testing"

	"github.com/grailbio/base/digest"
)

var digester = digest.Digester(crypto.SHA256)

func TestBloomlive(t *testing.T) {
	b := NewEstimate(1000)
	var members []digest.Digest
	for i := 0; i < 100; i++ {
		members = append(members, digester.FromString(fmt.Sprintf("live%d", i)))
	}
	for _, d := range members {
		b.Add(d)
	}
	for _, d := range members {
		if !b.Contains(d) {
			t.Errorf("digest %s not contained", d.Short())
		}
	}
	// The false positive rate is one in a thousand; a hundred
	// non-members should essentially all test negative.
	var falsePositives int
	for i := 0; i < 100; i++ {
		if b.Contains(digester.FromString(fmt.Sprintf("dead%d", i))) {
			falsePositives++
		}
	}
	if falsePositives > 5 {
		t.Errorf("got %d false positives of 100", falsePositives)
	}
}
