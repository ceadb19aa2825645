/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package queue implements the delay queue: a thread-safe min-heap keyed
// on forward time, with many producers and a single consumer. PopIfDue
// holds the heap lock across the peek-then-pop comparison, so checking
// "is the minimum due yet" and removing it are atomic.
package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/submitty/router/internal/record"
)

type item struct {
	releaseAt time.Time
	seq       uint64 // insertion order, for stable tie-break
	rec       record.Record
}

// innerHeap orders by release time, then by insertion order, so two
// records due at the same instant pop in the order they were enqueued.
type innerHeap []*item

func (h innerHeap) Len() int { return len(h) }
func (h innerHeap) Less(i, j int) bool {
	if h[i].releaseAt.Equal(h[j].releaseAt) {
		return h[i].seq < h[j].seq
	}
	return h[i].releaseAt.Before(h[j].releaseAt)
}
func (h innerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *innerHeap) Push(x interface{}) { *h = append(*h, x.(*item)) }
func (h *innerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Queue is the delay priority queue. Safe for many concurrent producers
// (Enqueue) and designed for a single consumer (PopIfDue).
type Queue struct {
	mu   sync.Mutex
	h    innerHeap
	next uint64
}

// New returns an empty Queue.
func New() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Enqueue is non-blocking.
func (q *Queue) Enqueue(releaseAt time.Time, rec record.Record) {
	q.mu.Lock()
	defer q.mu.Unlock()

	heap.Push(&q.h, &item{releaseAt: releaseAt, seq: q.next, rec: rec})
	q.next++
}

// PopIfDue removes and returns the minimum iff its release time is at or
// before now; otherwise it returns (zero, false) without removing anything.
// The comparison and the removal happen under the same lock, so this is
// race-free against other callers even if PopIfDue were invoked from more
// than one goroutine.
func (q *Queue) PopIfDue(now time.Time) (record.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) == 0 {
		return record.Record{}, false
	}

	top := q.h[0]
	if top.releaseAt.After(now) {
		return record.Record{}, false
	}

	heap.Pop(&q.h)
	return top.rec, true
}

// Len reports the current queue depth, used by internal/metrics to sample
// router_queue_depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}
