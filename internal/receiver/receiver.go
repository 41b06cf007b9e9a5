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

// Package receiver implements the Event Receiver (§4.b): it registers
// against the upstream provisioning topic, decodes each payload and hands
// valid events to the Coordinator, never blocking the bus's own delivery
// thread and never dying on a handler error.
package receiver

import (
	"context"
	"sync"

	"github.com/GoogleCloudPlatform/guest-logging-go/logger"
	"github.com/golang/groupcache/lru"
	"github.com/openwifi/venue-analytics-coordinator/internal/bus"
	"github.com/openwifi/venue-analytics-coordinator/internal/provisioning"
)

// State is one of the Event Receiver's three lifecycle states.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// recentEventCacheSize bounds the duplicate-eventId diagnostic cache. It is
// purely a logging aid — duplicates are still handed to the Coordinator,
// whose ApplyDeviceUpdate is idempotent (P3); the cache only controls how
// loudly a replay is logged.
const recentEventCacheSize = 256

// Handler is the Coordinator's event entry point, factored out as an
// interface so the receiver can be tested without a real coordinator.
type Handler interface {
	HandleProvisioningEvent(ctx context.Context, e provisioning.Event)
}

// Receiver is a process-wide event consumer with a single consumer thread
// (§4.b). The zero value is not usable; build one with New.
type Receiver struct {
	topic   bus.Topic
	handler Handler

	mu         sync.Mutex
	state      State
	queue      *unboundedQueue
	unregister func()
	seen       *lru.Cache

	wg sync.WaitGroup
}

// New allocates a Receiver bound to topic and handler.
func New(topic bus.Topic, handler Handler) *Receiver {
	return &Receiver{
		topic:   topic,
		handler: handler,
		state:   Idle,
		seen:    lru.New(recentEventCacheSize),
	}
}

// State returns the receiver's current lifecycle state.
func (r *Receiver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start registers against the provisioning.change topic and spawns the
// consumer. If the upstream bus is disabled, it logs and stays Idle,
// returning success — there is nothing to consume.
func (r *Receiver) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Running {
		return nil
	}

	if !r.topic.Enabled() {
		logger.Infof("receiver: upstream topic bus is disabled, staying idle")
		r.state = Idle
		return nil
	}

	r.queue = newUnboundedQueue()
	r.unregister = r.topic.Register(bus.ProvisioningChangeTopic, func(key string, payload []byte) {
		r.queue.push(notification{key: key, payload: payload})
	})

	r.wg.Add(1)
	go r.consume(ctx)

	r.state = Running
	return nil
}

// Stop clears the running flag, unregisters from the topic, wakes the
// queue and joins the consumer.
func (r *Receiver) Stop() {
	r.mu.Lock()
	if r.state != Running {
		r.mu.Unlock()
		return
	}
	r.state = Stopped
	unregister := r.unregister
	queue := r.queue
	r.mu.Unlock()

	if unregister != nil {
		unregister()
	}
	if queue != nil {
		queue.closeQueue()
	}
	r.wg.Wait()
}

func (r *Receiver) consume(ctx context.Context) {
	defer r.wg.Done()

	for {
		n, ok := r.queue.pop()
		if !ok {
			return
		}
		r.handle(ctx, n)
	}
}

func (r *Receiver) handle(ctx context.Context, n notification) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Errorf("receiver: handler panicked for key %q: %v", n.key, rec)
		}
	}()

	e, err := provisioning.Parse(n.payload)
	if err != nil {
		logger.Warningf("receiver: dropping unparseable event for key %q: %v", n.key, err)
		return
	}

	if _, dup := r.seen.Get(e.EventID); dup {
		logger.Debugf("receiver: duplicate eventId %q observed (key %q)", e.EventID, n.key)
	}
	r.seen.Add(e.EventID, struct{}{})

	r.handler.HandleProvisioningEvent(ctx, e)
}
