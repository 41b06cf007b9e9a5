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

package watcher

import (
	"sync"

	"github.com/openwifi/venue-analytics-coordinator/internal/telemetry"
)

// ProcessedMsg records one call to Fake.Process, for test assertions.
type ProcessedMsg struct {
	Serial  uint64
	Type    telemetry.MsgType
	Payload []byte
}

// Fake is a minimal in-memory Interface implementation used by this
// module's own coordinator and worker-pool tests and by the default wiring
// in cmd/venuecoordd. It is not the production watcher (§1, §4.e): it only
// records what the core's contract delivers to it.
type Fake struct {
	mu      sync.Mutex
	venue   string
	serials []uint64
	started bool
	stopped bool

	// Processed records every Process call, in the order they arrived.
	Processed []ProcessedMsg

	// Block, if set, is invoked at the top of Process before anything else
	// — tests use it to simulate a slow/blocked watcher for backpressure
	// scenarios (S6).
	Block func()
}

// NewFake allocates a Fake bound to venue with the given initial serials.
func NewFake(venue string, serials []uint64) *Fake {
	return &Fake{venue: venue, serials: append([]uint64(nil), serials...)}
}

func (f *Fake) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
}

func (f *Fake) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *Fake) Started() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *Fake) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *Fake) ModifySerialNumbers(sortedUnique []uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serials = append([]uint64(nil), sortedUnique...)
}

func (f *Fake) Serials() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.serials...)
}

func (f *Fake) Process(serial uint64, msgType telemetry.MsgType, payload []byte) {
	if f.Block != nil {
		f.Block()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Processed = append(f.Processed, ProcessedMsg{Serial: serial, Type: msgType, Payload: payload})
}

// Snapshot returns a copy of every Process call recorded so far. Safe to
// call concurrently with Process.
func (f *Fake) Snapshot() []ProcessedMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ProcessedMsg(nil), f.Processed...)
}

func (f *Fake) Venue() string {
	return f.venue
}

func (f *Fake) GetDevices(out *[]DeviceInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*out = (*out)[:0]
	for _, s := range f.serials {
		*out = append(*out, DeviceInfo{Serial: s})
	}
}
