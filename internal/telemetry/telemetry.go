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

// Package telemetry defines the tagged message variant carried from the
// telemetry receivers (state, status, health — external collaborators, §1)
// through the Worker Pool to a Watcher's Process method (§4.d, §9).
package telemetry

// MsgType is the closed set of telemetry message kinds a Watcher processes.
type MsgType int

const (
	// Connection carries an AP connect/disconnect notification.
	Connection MsgType = iota
	// State carries an AP state-report notification.
	State
	// Health carries an AP health-report notification.
	Health
)

// String implements fmt.Stringer for logging.
func (t MsgType) String() string {
	switch t {
	case Connection:
		return "connection"
	case State:
		return "state"
	case Health:
		return "health"
	default:
		return "unknown"
	}
}

// Notification is a single piece of telemetry destined for one device's
// watcher.
type Notification struct {
	Serial  uint64
	Type    MsgType
	Payload []byte
}
