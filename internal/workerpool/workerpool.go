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

// Package workerpool implements the sharded, per-venue in-order telemetry
// delivery worker pool (§4.d). Every watcher's messages are pinned to a
// single worker by a deterministic hash of its venue id (I5), giving
// per-venue FIFO processing with caller-side drop-on-full backpressure.
package workerpool

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/GoogleCloudPlatform/guest-logging-go/logger"
	"github.com/openwifi/venue-analytics-coordinator/internal/telemetry"
	"github.com/openwifi/venue-analytics-coordinator/internal/watcher"
)

// job is a single unit of work delivered to a worker's queue.
type job struct {
	w       watcher.Interface
	serial  uint64
	msgType telemetry.MsgType
	payload []byte
}

type workerLoop struct {
	queue chan job
	done  chan struct{}
}

// Pool is a fixed-size set of per-shard worker queues.
type Pool struct {
	workers []*workerLoop
	running int32
	wg      sync.WaitGroup
}

// New allocates a Pool with workerCount workers, each with a queue of
// capacity queueCap. It does not start the workers; call Start for that.
func New(workerCount, queueCap int) *Pool {
	p := &Pool{workers: make([]*workerLoop, workerCount)}
	for i := range p.workers {
		p.workers[i] = &workerLoop{
			queue: make(chan job, queueCap),
			done:  make(chan struct{}),
		}
	}
	return p
}

// Shard computes the deterministic worker index for a venue id (I5, P5):
// FNV-1a over the venue id bytes, modulo the worker count. hash/fnv's
// New64a already implements the exact offset-basis/prime the spec names
// for 64-bit FNV-1a, so it is used directly rather than re-derived.
func (p *Pool) Shard(venueID string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(venueID))
	return int(h.Sum64() % uint64(len(p.workers)))
}

// Start begins the worker goroutines.
func (p *Pool) Start() {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return
	}
	for i, w := range p.workers {
		p.wg.Add(1)
		go p.runWorker(i, w)
	}
}

// Stop signals every worker to drain and exit, then waits for them to
// finish. Already-enqueued jobs are processed before a worker exits.
func (p *Pool) Stop() {
	if !atomic.CompareAndSwapInt32(&p.running, 1, 0) {
		return
	}
	for _, w := range p.workers {
		close(w.done)
	}
	p.wg.Wait()
}

func (p *Pool) runWorker(idx int, w *workerLoop) {
	defer p.wg.Done()
	for {
		select {
		case j := <-w.queue:
			p.process(idx, j)
		case <-w.done:
			// Drain whatever is already queued before leaving — shutdown
			// should not silently discard accepted work.
			for {
				select {
				case j := <-w.queue:
					p.process(idx, j)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) process(idx int, j job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("workerpool: worker %d: watcher.Process panicked for venue %q: %v", idx, j.w.Venue(), r)
		}
	}()
	j.w.Process(j.serial, j.msgType, j.payload)
}

// Enqueue delivers a telemetry notification for w's shard. It returns false
// — a caller-visible drop, never a block — when the pool is not running or
// the target worker's queue is already at capacity (§4.d, P7).
func (p *Pool) Enqueue(w watcher.Interface, serial uint64, msgType telemetry.MsgType, payload []byte) bool {
	if atomic.LoadInt32(&p.running) == 0 {
		return false
	}

	idx := p.Shard(w.Venue())
	select {
	case p.workers[idx].queue <- job{w: w, serial: serial, msgType: msgType, payload: payload}:
		return true
	default:
		logger.Warningf("workerpool: dropping message for venue %q: worker %d queue is full", w.Venue(), idx)
		return false
	}
}

// WorkerCount returns the number of configured workers.
func (p *Pool) WorkerCount() int {
	return len(p.workers)
}
