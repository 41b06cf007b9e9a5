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

package bus

import "sync"

// FakeTopic is an in-memory Topic used by tests and by the default wiring in
// cmd/venuecoordd; Publish delivers
// synchronously, in call order, to every callback registered for the topic
// at the time of the call — this is what gives tests the "same partition
// key delivered in enqueue order" guarantee described in §4.b without
// needing a real broker.
type FakeTopic struct {
	mu        sync.Mutex
	enabled   bool
	callbacks map[string][]Callback
}

// NewFakeTopic allocates a FakeTopic. enabled mirrors whether the upstream
// bus would report itself available.
func NewFakeTopic(enabled bool) *FakeTopic {
	return &FakeTopic{enabled: enabled, callbacks: make(map[string][]Callback)}
}

func (f *FakeTopic) Enabled() bool {
	return f.enabled
}

func (f *FakeTopic) Register(topic string, cb Callback) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callbacks[topic] = append(f.callbacks[topic], cb)
	idx := len(f.callbacks[topic]) - 1

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.callbacks[topic][idx] = nil
	}
}

// Publish delivers (key, payload) to every live callback registered for
// topic, synchronously, in registration order.
func (f *FakeTopic) Publish(topic, key string, payload []byte) {
	f.mu.Lock()
	cbs := append([]Callback(nil), f.callbacks[topic]...)
	f.mu.Unlock()

	for _, cb := range cbs {
		if cb != nil {
			cb(key, payload)
		}
	}
}
