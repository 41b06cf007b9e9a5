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

// Package bus defines the upstream topic bus collaborator the Event
// Receiver registers against (§4.b, §6). The real message bus (Kafka,
// Pub/Sub, or similar) is an external collaborator, out of scope; this
// package only defines the contract plus an in-memory fake for tests.
package bus

// Callback is invoked once per message with the partition key and raw
// payload, as registered via Topic.Register.
type Callback func(key string, payload []byte)

// Topic is the upstream topic bus collaborator.
type Topic interface {
	// Enabled reports whether the bus is available. If false, the Event
	// Receiver should stay Idle rather than attempt registration (§4.b).
	Enabled() bool
	// Register subscribes cb to the named topic and returns an unregister
	// function. The partition key used by publishers is the board id (§6).
	Register(topic string, cb Callback) (unregister func())
}

// ProvisioningChangeTopic is the topic name the Event Receiver subscribes
// to (§6).
const ProvisioningChangeTopic = "provisioning.change"
