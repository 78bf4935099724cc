// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package producer implements the event-sink half of the producer/listener
// pipeline (C5): it decorates the FUSE handler via the fusefs.EventSink
// hook and hands observed operations off to an unbounded, multi-producer /
// multi-consumer queue for a listener to drain.
package producer

import (
	"sync"
)

// node is a link in the queue's backing list.
type node struct {
	value Event
	next  *node
}

// Queue is an unbounded FIFO queue of Events, safe for concurrent use by
// any number of producers and consumers. Pop blocks until an item is
// available or the queue is closed.
type Queue struct {
	mu         sync.Mutex
	cond       *sync.Cond
	start, end *node
	size       int
	closed     bool
}

// NewQueue creates an empty queue ready for use.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues an event. It is a no-op once the queue has been closed.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}

	n := &node{value: e}
	if q.size == 0 {
		q.start, q.end = n, n
	} else {
		q.end.next = n
		q.end = n
	}
	q.size++
	q.cond.Signal()
}

// Pop blocks until an event is available, then removes and returns it. The
// second return value is false only when the queue is closed and drained,
// the sentinel-closed state a listener uses to stop.
func (q *Queue) Pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.size == 0 {
		return Event{}, false
	}

	n := q.start
	if q.size == 1 {
		q.start, q.end = nil, nil
	} else {
		q.start = q.start.next
	}
	q.size--
	return n.value, true
}

// Len reports the number of events currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Close marks the queue closed: pending Pop calls waiting on an empty queue
// return immediately with ok=false. Events already queued are still
// delivered to Pop first.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
