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

// Package watcher defines the contract between the Coordinator/Worker Pool
// core and the per-board watcher implementation (§4.e). The concrete
// watcher — telemetry registration, per-device analytics state — is an
// external collaborator (§1); this package owns only the interface the
// core requires, plus an in-memory reference implementation used by this
// module's own tests.
package watcher

import "github.com/openwifi/venue-analytics-coordinator/internal/telemetry"

// DeviceInfo is a single entry in the list GetDevices copies out.
type DeviceInfo struct {
	Serial uint64
}

// Interface is the contract a watcher exposes to the core (§4.e).
// Start/Stop must handle telemetry registration idempotently.
// ModifySerialNumbers must be safe to call concurrently with Process — the
// watcher owns its own locking.
type Interface interface {
	Start()
	Stop()
	ModifySerialNumbers(sortedUnique []uint64)
	Process(serial uint64, msgType telemetry.MsgType, payload []byte)
	Venue() string
	GetDevices(out *[]DeviceInfo)
}
