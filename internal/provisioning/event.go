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

// Package provisioning decodes provisioning change events off the wire and
// exposes the typed event the Coordinator consumes.
package provisioning

// Event types carried on the "provisioning.change" topic.
const (
	EventBoardCreated = "board.created"
	EventBoardUpdated = "board.updated"
	EventBoardDeleted = "board.deleted"
)

// Board is the board payload embedded in a provisioning change event.
type Board struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	VenueID          string   `json:"venueId"`
	MonitorSubVenues bool     `json:"monitorSubVenues"`
	Version          uint64   `json:"version"`
	Devices          []string `json:"devices"`
}

// Event is the fully decoded provisioning change event.
type Event struct {
	EventID       string `json:"eventId"`
	EventType     string `json:"eventType"`
	OccurredAt    string `json:"occurredAt"`
	CorrelationID string `json:"correlationId"`
	Board         Board  `json:"board"`
}

// IsDelete reports whether the event is a board.deleted event.
func (e Event) IsDelete() bool {
	return e.EventType == EventBoardDeleted
}

// valid mirrors §3's validity rule: eventType non-empty AND board.id
// non-empty.
func (e Event) valid() bool {
	return e.EventType != "" && e.Board.ID != ""
}
