// Copyright 2026 The Venue Analytics Coordinator Authors
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

package receiver

import "sync"

// notification is one (key, payload) pair enqueued off the topic callback.
type notification struct {
	key     string
	payload []byte
}

// unboundedQueue is a FIFO of notifications with no capacity limit: the
// topic callback, which runs on the bus's own delivery thread, must never
// block on a slow consumer (§4.b, §5 — all producer-self-throttled queues
// are unbounded by design; the worker pool is the only bounded queue).
type unboundedQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []notification
	closed bool
}

func newUnboundedQueue() *unboundedQueue {
	q := &unboundedQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends n and wakes one blocked consumer. It never blocks.
func (q *unboundedQueue) push(n notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, n)
	q.cond.Signal()
}

// pop blocks until an item is available or the queue is closed. ok is false
// only once the queue is closed and fully drained.
func (q *unboundedQueue) pop() (n notification, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return notification{}, false
	}

	n = q.items[0]
	q.items = q.items[1:]
	return n, true
}

// closeQueue wakes every blocked consumer; subsequent pops drain whatever
// remains, then report ok=false.
func (q *unboundedQueue) closeQueue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
