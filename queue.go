// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package incr

// heightQueue is the scheduler's height-bucketed ready queue: a dense
// array from height to the set of nodes ready to recompute at that
// height. The cursor only moves up within a pass; bind height fixups
// re-enqueue a node at its raised height and the entry left behind at
// the old height becomes stale (detected by comparing the entry's
// height with the node's queuedAt).
type heightQueue struct {
	buckets [][]*Node
	cursor  int
	n       int
}

// enqueue adds n to the bucket for its current height. Enqueueing a
// node already queued at its current height is a no-op; enqueueing a
// node queued at a lower height reseats it.
func (q *heightQueue) enqueue(n *Node) {
	if n.inQueue && n.queuedAt == n.height {
		return
	}
	for len(q.buckets) <= n.height {
		q.buckets = append(q.buckets, nil)
	}
	if !n.inQueue {
		q.n++
	}
	n.inQueue = true
	n.queuedAt = n.height
	q.buckets[n.height] = append(q.buckets[n.height], n)
	if n.height < q.cursor {
		// Defensive: bind scopes keep mid-pass creations at or above
		// the cursor, but a carried-over node from an aborted pass
		// may land below it.
		q.cursor = n.height
	}
}

// dequeue returns the next ready node in non-decreasing height order,
// or nil when the queue is empty. Stale and dead entries are skipped.
func (q *heightQueue) dequeue() *Node {
	for q.n > 0 {
		for q.cursor < len(q.buckets) && len(q.buckets[q.cursor]) == 0 {
			q.cursor++
		}
		if q.cursor == len(q.buckets) {
			break
		}
		bucket := q.buckets[q.cursor]
		n := bucket[len(bucket)-1]
		q.buckets[q.cursor] = bucket[:len(bucket)-1]
		if n.dead || !n.inQueue || n.queuedAt != q.cursor {
			// Stale entry: the node was reclaimed, already
			// dequeued, or reseated at a raised height.
			if n.dead && n.inQueue && n.queuedAt == q.cursor {
				n.inQueue = false
				q.n--
			}
			continue
		}
		n.inQueue = false
		q.n--
		return n
	}
	q.reset()
	return nil
}

// drain empties the queue, returning the nodes that were still ready.
func (q *heightQueue) drain() []*Node {
	var nodes []*Node
	for {
		n := q.dequeue()
		if n == nil {
			return nodes
		}
		nodes = append(nodes, n)
	}
}

func (q *heightQueue) reset() {
	q.buckets = q.buckets[:0]
	q.cursor = 0
	q.n = 0
}

func (q *heightQueue) empty() bool {
	return q.n == 0
}
