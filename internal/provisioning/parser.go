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

package provisioning

import (
	"encoding/json"
	"fmt"
)

// rawBoard mirrors Board but keeps version and devices as raw JSON so we can
// apply the leniency rules in §4.a instead of failing the whole decode on a
// mismatched type.
type rawBoard struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	VenueID          string          `json:"venueId"`
	MonitorSubVenues bool            `json:"monitorSubVenues"`
	Version          json.RawMessage `json:"version"`
	Devices          json.RawMessage `json:"devices"`
}

type rawEvent struct {
	EventID       string   `json:"eventId"`
	EventType     string   `json:"eventType"`
	OccurredAt    string   `json:"occurredAt"`
	CorrelationID string   `json:"correlationId"`
	Board         rawBoard `json:"board"`
}

// Parse decodes a provisioning change event payload into a typed Event. It
// returns an error (never panics) for malformed or invalid input, per §4.a:
//   - a malformed "version" leniently becomes 0 rather than failing the event
//   - a non-array "devices" leniently becomes an empty device list
//   - the event is rejected only if eventType or board.id is empty
func Parse(payload []byte) (ev Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			ev = Event{}
			err = fmt.Errorf("provisioning: parser panicked: %v", r)
		}
	}()

	var raw rawEvent
	if decErr := json.Unmarshal(payload, &raw); decErr != nil {
		return Event{}, fmt.Errorf("provisioning: malformed payload: %w", decErr)
	}

	ev = Event{
		EventID:       raw.EventID,
		EventType:     raw.EventType,
		OccurredAt:    raw.OccurredAt,
		CorrelationID: raw.CorrelationID,
		Board: Board{
			ID:               raw.Board.ID,
			Name:             raw.Board.Name,
			VenueID:          raw.Board.VenueID,
			MonitorSubVenues: raw.Board.MonitorSubVenues,
			Version:          parseLenientVersion(raw.Board.Version),
			Devices:          parseLenientDevices(raw.Board.Devices),
		},
	}

	if !ev.valid() {
		return Event{}, fmt.Errorf("provisioning: invalid event (eventType=%q board.id=%q)", ev.EventType, ev.Board.ID)
	}

	return ev, nil
}

// parseLenientVersion returns 0 if raw is absent or cannot be read as an
// unsigned 64-bit integer, instead of failing the whole event.
func parseLenientVersion(raw json.RawMessage) uint64 {
	if len(raw) == 0 {
		return 0
	}

	var v uint64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	return v
}

// parseLenientDevices returns an empty slice if raw is absent or is not a
// JSON array of strings, instead of failing the whole event.
func parseLenientDevices(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
